package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/tirasundara/amazon-reconciliation/internal/domain"
	"github.com/tirasundara/amazon-reconciliation/pkg/fileutil"
)

const dateFormat = "2006-01-02"

// MatchedHeader is the column layout of the matched transactions report
var MatchedHeader = []string{
	"statement_transaction_date",
	"statement_description",
	"statement_amount",
	"amazon_date",
	"amazon_amount",
	"amazon_order_id",
}

// OutputFormatter defines the interface for formatting reconciliation results
type OutputFormatter interface {
	Format(result domain.ReconciliationResult) ([]byte, error)
	FileExtension() string
}

// NewFormatter returns the formatter registered under name
func NewFormatter(name string) (OutputFormatter, error) {
	switch name {
	case "csv":
		return NewCSVFormatter(), nil
	case "json":
		return NewJSONFormatter(true), nil

	// Can add other formatters later: txt, xlsx, etc
	default:
		return nil, fmt.Errorf("unsupported output format: %s", name)
	}
}

// CSVFormatter writes one row per matched payment, ordered by order date
type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// Format implements the OutputFormatter interface for CSV
func (f *CSVFormatter) Format(result domain.ReconciliationResult) ([]byte, error) {
	matches := make([]domain.Match, len(result.Payments.Matched))
	copy(matches, result.Payments.Matched)

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Payment.Date.Before(matches[j].Payment.Date)
	})

	rows := make([][]string, 0, len(matches))
	for _, match := range matches {
		rows = append(rows, []string{
			match.Statement.Date.Format(dateFormat),
			match.Statement.Description,
			match.Statement.Amount.StringFixed(2),
			match.Payment.Date.Format(dateFormat),
			match.Payment.Amount.StringFixed(2),
			match.Payment.OrderID(),
		})
	}

	var buf bytes.Buffer
	if err := fileutil.WriteCSV(&buf, MatchedHeader, rows); err != nil {
		return nil, fmt.Errorf("writing matched report: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *CSVFormatter) FileExtension() string {
	return "csv"
}

// JSONFormatter formats reconciliation results as JSON
type JSONFormatter struct {
	PrettyPrint bool
}

func NewJSONFormatter(prettyPrint bool) *JSONFormatter {
	return &JSONFormatter{
		PrettyPrint: prettyPrint,
	}
}

// Format implements the OutputFormatter interface for JSON
func (f *JSONFormatter) Format(result domain.ReconciliationResult) ([]byte, error) {
	if f.PrettyPrint {
		return json.MarshalIndent(result, "", "  ")
	}
	return json.Marshal(result)
}

func (f *JSONFormatter) FileExtension() string {
	return "json"
}
