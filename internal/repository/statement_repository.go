package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tirasundara/amazon-reconciliation/internal/domain"
	"github.com/tirasundara/amazon-reconciliation/pkg/fileutil"
)

const (
	columnTxnDate     = "Transaction Date"
	columnDescription = "Description"
	columnAmount      = "Amount"
)

var statementHeaderFields = []string{columnTxnDate, columnDescription, columnAmount}

// DefaultStatementDateLayouts are tried in order on the transaction date column
var DefaultStatementDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
}

// CSVStatementParser reads a generic statement export with Transaction Date,
// Description and Amount columns. It yields a single transaction list.
type CSVStatementParser struct {
	DateLayouts []string
	logger      *slog.Logger
}

// NewCSVStatementParser creates a new CSVStatementParser
func NewCSVStatementParser(dateLayouts []string, logger *slog.Logger) *CSVStatementParser {
	if len(dateLayouts) == 0 {
		dateLayouts = DefaultStatementDateLayouts
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CSVStatementParser{
		DateLayouts: dateLayouts,
		logger:      logger,
	}
}

// ParseList reads every parseable statement line in file order
func (p *CSVStatementParser) ParseList(ctx context.Context, path string) ([]domain.StatementTransaction, error) {
	reader := fileutil.NewCSVReader(path)

	header, err := reader.ReadHeader()
	if err != nil {
		return nil, fmt.Errorf("reading bank statement header: %w", err)
	}

	columnMap, err := createHeaderMap(header, statementHeaderFields, nil)
	if err != nil {
		return nil, fmt.Errorf("mapping CSV columns: %w", err)
	}

	var txns []domain.StatementTransaction
	line := 1
	rowProcessorFn := func(row []string) error {
		line++
		if err := ctx.Err(); err != nil {
			return err
		}

		txDate, err := p.parseDate(cell(row, columnMap, columnTxnDate))
		if err != nil {
			// Log but continue processing other rows
			p.logger.Warn("skipping statement row", slog.String("path", path), slog.Int("line", line), slog.String("error", err.Error()))
			return nil
		}

		amount, err := parseStatementAmount(cell(row, columnMap, columnAmount))
		if err != nil {
			p.logger.Warn("skipping statement row", slog.String("path", path), slog.Int("line", line), slog.String("error", err.Error()))
			return nil
		}

		txns = append(txns, domain.StatementTransaction{
			Date:        txDate,
			Description: cell(row, columnMap, columnDescription),
			Amount:      amount,
		})
		return nil
	}

	if err := reader.ReadAndProcessByRow(rowProcessorFn); err != nil {
		return nil, fmt.Errorf("processing bank statement: %w", err)
	}

	return txns, nil
}

// Parse implements the StatementParser interface. Negative amounts stay in the
// transaction list, as the export does not separate refunds.
func (p *CSVStatementParser) Parse(ctx context.Context, path string) (domain.StatementBatch, error) {
	txns, err := p.ParseList(ctx, path)
	if err != nil {
		return domain.StatementBatch{}, err
	}
	return domain.NewStatementBatch(txns), nil
}

func (p *CSVStatementParser) parseDate(value string) (time.Time, error) {
	for _, layout := range p.DateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date format: %q", value)
}
