package statement

import (
	"log/slog"

	"github.com/tirasundara/amazon-reconciliation/internal/config"
	"github.com/tirasundara/amazon-reconciliation/internal/repository"
)

const (
	ExampleCSV = "example_csv"
	RBCPDF     = "rbc_pdf"
)

// DefaultRegistry registers every built-in statement parser
func DefaultRegistry(cfg config.StatementConfig, logger *slog.Logger) *Registry {
	registry := NewRegistry(logger)

	csvParser := repository.NewCSVStatementParser(cfg.DateLayouts, logger)
	pdfParser := NewRBCPDFParser(cfg.Year, cfg.Excludes, cfg.PDFToText, logger)

	// Names are unique here, so Register cannot fail
	_ = registry.Register(ExampleCSV, ListParserFunc(csvParser.ParseList))
	_ = registry.Register(RBCPDF, PairParserFunc(pdfParser.ParsePair))

	return registry
}
