// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (reconcile.yaml)
//  2. Environment variables (fallback)
//
// A .env file in the working directory is read first in both cases, so its
// values are visible to ${VAR} references inside the YAML file.
//
// Example usage:
//
//	cfg, err := config.LoadOrEnv(config.DefaultPath)
//	tolerance := cfg.Matching.AmountTolerance
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "reconcile.yaml"

// Config represents the entire application configuration
type Config struct {
	Matching      MatchingConfig      `yaml:"matching"`
	Ledger        LedgerConfig        `yaml:"ledger"`
	Statement     StatementConfig     `yaml:"statement"`
	Output        OutputConfig        `yaml:"output"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// MatchingConfig holds the tolerances used by both matching passes
type MatchingConfig struct {
	AmountTolerance string `yaml:"amount_tolerance"`
	DaysBefore      int    `yaml:"days_before"`
	DaysAfter       int    `yaml:"days_after"`
}

// LedgerConfig holds order ledger reading settings
type LedgerConfig struct {
	DateLayouts []string `yaml:"date_layouts"`
	Concurrent  bool     `yaml:"concurrent"`
	Workers     int      `yaml:"workers"`
	BatchSize   int      `yaml:"batch_size"`
}

// StatementConfig holds statement source settings
type StatementConfig struct {
	Year        int      `yaml:"year"` // Assumed for statement dates printed without one
	Excludes    []string `yaml:"excludes"`
	PDFToText   string   `yaml:"pdftotext"`
	DateLayouts []string `yaml:"date_layouts"`
}

// OutputConfig holds report settings
type OutputConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns the configuration used when nothing overrides it
func Defaults() *Config {
	return &Config{
		Matching: MatchingConfig{
			AmountTolerance: "0.01",
			DaysBefore:      1,
			DaysAfter:       2,
		},
		Ledger: LedgerConfig{
			Workers:   4,
			BatchSize: 500,
		},
		Statement: StatementConfig{
			Year:      time.Now().Year(),
			Excludes:  []string{"AMAZONWEBSERVICES", "AMAZON.CAPRIMEMEMBER"},
			PDFToText: "pdftotext",
		},
		Output: OutputConfig{
			Path:   "matched_transactions.csv",
			Format: "csv",
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "text",
			},
		},
	}
}

// Load reads and parses the config file on top of Defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	_ = godotenv.Load()

	// Expand environment variables (e.g., ${STATEMENT_YEAR})
	expanded := os.ExpandEnv(string(data))

	cfg := Defaults()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only.
// A .env file in the working directory is read first when present.
func LoadFromEnv() *Config {
	_ = godotenv.Load()

	defaults := Defaults()
	return &Config{
		Matching: MatchingConfig{
			AmountTolerance: getEnv("RECONCILE_AMOUNT_TOLERANCE", defaults.Matching.AmountTolerance),
			DaysBefore:      getEnvInt("RECONCILE_DAYS_BEFORE", defaults.Matching.DaysBefore),
			DaysAfter:       getEnvInt("RECONCILE_DAYS_AFTER", defaults.Matching.DaysAfter),
		},
		Ledger: LedgerConfig{
			DateLayouts: getEnvList("RECONCILE_LEDGER_DATE_LAYOUTS"),
			Concurrent:  getEnv("RECONCILE_LEDGER_CONCURRENT", "") == "true",
			Workers:     getEnvInt("RECONCILE_LEDGER_WORKERS", defaults.Ledger.Workers),
			BatchSize:   getEnvInt("RECONCILE_LEDGER_BATCH_SIZE", defaults.Ledger.BatchSize),
		},
		Statement: StatementConfig{
			Year:        getEnvInt("STATEMENT_YEAR", defaults.Statement.Year),
			Excludes:    getEnvListOr("STATEMENT_EXCLUDES", defaults.Statement.Excludes),
			PDFToText:   getEnv("PDFTOTEXT_PATH", defaults.Statement.PDFToText),
			DateLayouts: getEnvList("STATEMENT_DATE_LAYOUTS"),
		},
		Output: OutputConfig{
			Path:   getEnv("RECONCILE_OUTPUT", defaults.Output.Path),
			Format: getEnv("RECONCILE_FORMAT", defaults.Output.Format),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", defaults.Observability.Logging.Level),
				Format: getEnv("LOG_FORMAT", defaults.Observability.Logging.Format),
			},
		},
	}
}

// LoadOrEnv loads the YAML file at path, falling back to environment variables
// only when the file does not exist. Any other failure is returned.
func LoadOrEnv(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return LoadFromEnv(), nil
	}
	return cfg, err
}

// Validate checks values that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	if _, err := c.Matching.Tolerance(); err != nil {
		return err
	}
	if c.Matching.DaysBefore < 0 || c.Matching.DaysAfter < 0 {
		return fmt.Errorf("matching window days must not be negative")
	}
	switch c.Output.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("unsupported output format: %s", c.Output.Format)
	}
	return nil
}

// Tolerance parses the amount tolerance as a decimal
func (m MatchingConfig) Tolerance() (decimal.Decimal, error) {
	tolerance, err := decimal.NewFromString(m.AmountTolerance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount tolerance %q: %w", m.AmountTolerance, err)
	}
	if tolerance.IsNegative() {
		return decimal.Zero, fmt.Errorf("amount tolerance must not be negative: %s", m.AmountTolerance)
	}
	return tolerance, nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvList splits a comma-separated environment variable
func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvListOr(key string, fallback []string) []string {
	if list := getEnvList(key); len(list) > 0 {
		return list
	}
	return fallback
}
