package statement

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tirasundara/amazon-reconciliation/internal/domain"
)

// rbcLinePattern picks Amazon charges out of a statement line: posting date
// like "JAN05", anything, an AMZN/AMAZON merchant, then the amount.
var rbcLinePattern = regexp.MustCompile(`(?i)^(\w{3}\d{1,2}) .* (?:AMZN|AMAZON)[^$]* (-?\$\d[.,\d]+)`)

// TextExtractor turns a PDF into plain text
type TextExtractor func(ctx context.Context, path string) (string, error)

// RBCPDFParser parses RBC credit card statement PDFs
type RBCPDFParser struct {
	Year     int
	Excludes []string
	extract  TextExtractor
	logger   *slog.Logger
}

// NewRBCPDFParser creates a parser that extracts text with the pdftotext binary
func NewRBCPDFParser(year int, excludes []string, pdftotext string, logger *slog.Logger) *RBCPDFParser {
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	return NewRBCPDFParserWithExtractor(year, excludes, PDFToText(pdftotext), logger)
}

// NewRBCPDFParserWithExtractor creates a parser with a custom text extractor
func NewRBCPDFParserWithExtractor(year int, excludes []string, extract TextExtractor, logger *slog.Logger) *RBCPDFParser {
	if year == 0 {
		year = time.Now().Year()
	}
	if logger == nil {
		logger = slog.Default()
	}

	upper := make([]string, 0, len(excludes))
	for _, exclude := range excludes {
		upper = append(upper, strings.ToUpper(exclude))
	}

	return &RBCPDFParser{
		Year:     year,
		Excludes: upper,
		extract:  extract,
		logger:   logger,
	}
}

// PDFToText runs pdftotext in layout mode and returns its output
func PDFToText(binary string) TextExtractor {
	return func(ctx context.Context, path string) (string, error) {
		cmd := exec.CommandContext(ctx, binary, "-layout", path, "-")
		output, err := cmd.Output()
		if err != nil {
			return "", fmt.Errorf("%s failed: %w", binary, err)
		}
		return string(output), nil
	}
}

// ParsePair extracts Amazon charges and refunds from one statement.
// Lines that fail to parse are skipped.
func (p *RBCPDFParser) ParsePair(ctx context.Context, path string) ([]domain.StatementTransaction, []domain.StatementTransaction, error) {
	text, err := p.extract(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("extract text: %w", err)
	}

	batch := domain.SplitRefunds(p.parseText(text))
	return batch.Transactions, batch.Refunds, nil
}

// Parse implements the StatementParser interface
func (p *RBCPDFParser) Parse(ctx context.Context, path string) (domain.StatementBatch, error) {
	return PairParserFunc(p.ParsePair).Parse(ctx, path)
}

func (p *RBCPDFParser) parseText(text string) []domain.StatementTransaction {
	var txns []domain.StatementTransaction

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(strings.ReplaceAll(scanner.Text(), "\u00a0", " "))

		groups := rbcLinePattern.FindStringSubmatch(line)
		if groups == nil {
			continue
		}

		date, err := time.Parse("Jan2 2006", fmt.Sprintf("%s %d", groups[1], p.Year))
		if err != nil {
			p.logger.Debug("skipping statement line", slog.String("line", line), slog.String("error", err.Error()))
			continue
		}

		amount, err := decimal.NewFromString(strings.NewReplacer("$", "", ",", "").Replace(groups[2]))
		if err != nil {
			p.logger.Debug("skipping statement line", slog.String("line", line), slog.String("error", err.Error()))
			continue
		}

		if p.excluded(line) {
			continue
		}

		txns = append(txns, domain.StatementTransaction{
			Date:        date,
			Description: line,
			Amount:      amount,
		})
	}

	return txns
}

func (p *RBCPDFParser) excluded(line string) bool {
	upper := strings.ToUpper(line)
	for _, exclude := range p.Excludes {
		if strings.Contains(upper, exclude) {
			return true
		}
	}
	return false
}
