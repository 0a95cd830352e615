package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tirasundara/amazon-reconciliation/internal/config"
	"github.com/tirasundara/amazon-reconciliation/internal/logging"
	"github.com/tirasundara/amazon-reconciliation/internal/matcher"
	"github.com/tirasundara/amazon-reconciliation/internal/normalizer"
	"github.com/tirasundara/amazon-reconciliation/internal/report"
	"github.com/tirasundara/amazon-reconciliation/internal/repository"
	"github.com/tirasundara/amazon-reconciliation/internal/service"
	"github.com/tirasundara/amazon-reconciliation/internal/statement"
	"github.com/tirasundara/amazon-reconciliation/pkg/fileutil"
)

func main() {
	// Command-line flags
	var (
		configPath   string
		outputFile   string
		outputFormat string
		quiet        bool
		force        bool
		concurrent   bool
	)

	flag.StringVar(&configPath, "config", config.DefaultPath, "Path to YAML config file")
	flag.StringVar(&outputFile, "output", "", "Path to output file (default matched_transactions.csv)")
	flag.StringVar(&outputFormat, "format", "", "Output format: csv or json")
	flag.BoolVar(&quiet, "quiet", false, "Only log errors")
	flag.BoolVar(&force, "force", false, "Overwrite the output file without asking")
	flag.BoolVar(&force, "f", false, "Shorthand for --force")
	flag.BoolVar(&concurrent, "concurrent", false, "Read the order ledger with a worker pool")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <parser_name> <statement|glob> <amazon_csv>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	// Validate positional args
	args := flag.Args()
	if len(args) != 3 {
		exitWithError("parser name, statement path and amazon order CSV are required")
	}
	parserName, statementPattern, amazonCSV := args[0], args[1], args[2]

	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Flags win over config
	if outputFile != "" {
		cfg.Output.Path = outputFile
	}
	if outputFormat != "" {
		cfg.Output.Format = outputFormat
	}
	if concurrent {
		cfg.Ledger.Concurrent = true
	}
	if quiet {
		cfg.Observability.Logging.Level = "error"
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(fmt.Sprintf("Invalid config: %v", err))
	}

	logger := logging.NewLoggerWithSystem(cfg.Observability.Logging, "reconcile")

	// Resolve the statement source before touching any input
	registry := statement.DefaultRegistry(cfg.Statement, logger)
	parser, err := registry.Get(parserName)
	if err != nil {
		exitWithError(err.Error())
	}

	formatter, err := report.NewFormatter(cfg.Output.Format)
	if err != nil {
		exitWithError(err.Error())
	}

	outputPath := cfg.Output.Path
	// If no extension is provided, add the formatter's default extension
	if !strings.Contains(outputPath, ".") {
		outputPath = fmt.Sprintf("%s.%s", outputPath, formatter.FileExtension())
	}

	if !force {
		ok, err := fileutil.ConfirmOverwrite(outputPath, os.Stdin, os.Stdout)
		if err != nil {
			exitWithError(err.Error())
		}
		if !ok {
			os.Exit(1)
		}
	}

	tolerance, err := cfg.Matching.Tolerance()
	if err != nil {
		exitWithError(fmt.Sprintf("Invalid config: %v", err))
	}
	m := matcher.NewDefaultMatcher(matcher.Config{
		AmountTolerance: tolerance,
		DaysBefore:      cfg.Matching.DaysBefore,
		DaysAfter:       cfg.Matching.DaysAfter,
	}, logger)

	ledgerRepo := repository.NewCSVLedgerRepository(amazonCSV, logger)
	if cfg.Ledger.Workers > 0 {
		ledgerRepo.NumWorkers = cfg.Ledger.Workers
	}
	if cfg.Ledger.BatchSize > 0 {
		ledgerRepo.BatchSize = cfg.Ledger.BatchSize
	}

	// Create reconciliation service
	reconciliationService := service.NewReconciliationService(
		ledgerRepo,
		parser,
		normalizer.NewNormalizer(cfg.Ledger.DateLayouts, logger),
		m,
		m,
		service.Options{ConcurrentLedger: cfg.Ledger.Concurrent},
		logger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(fmt.Sprintf("Running statement parser %s on %s", parserName, statementPattern))

	// Run reconciliation
	result, err := reconciliationService.Reconcile(ctx, statementPattern)
	if err != nil {
		exitWithError(fmt.Sprintf("Reconciliation failed: %v", err))
	}

	report.Summary(logger, result)

	// Format the output
	output, err := formatter.Format(result)
	if err != nil {
		exitWithError(fmt.Sprintf("Failed to format output: %v", err))
	}

	if err := os.WriteFile(outputPath, output, 0644); err != nil {
		exitWithError(fmt.Sprintf("Failed to write output file: %v", err))
	}

	logger.Info(fmt.Sprintf("Reconciled transactions saved to: %s", outputPath))
}

func exitWithError(message string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Run with -h flag for usage information.\n")
	os.Exit(1)
}
