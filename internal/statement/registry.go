// Package statement resolves statement record sources by machine name and
// loads one or more statement documents into a single batch.
package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/tirasundara/amazon-reconciliation/internal/domain"
)

// ErrUnknownSource is returned when no parser is registered under a name
var ErrUnknownSource = errors.New("statement parser not found")

// ListParserFunc adapts a source that yields a single transaction list
type ListParserFunc func(ctx context.Context, path string) ([]domain.StatementTransaction, error)

// Parse implements the StatementParser interface with an empty refund list
func (f ListParserFunc) Parse(ctx context.Context, path string) (domain.StatementBatch, error) {
	txns, err := f(ctx, path)
	if err != nil {
		return domain.StatementBatch{}, err
	}
	return domain.NewStatementBatch(txns), nil
}

// PairParserFunc adapts a source that separates transactions from refunds itself
type PairParserFunc func(ctx context.Context, path string) ([]domain.StatementTransaction, []domain.StatementTransaction, error)

// Parse implements the StatementParser interface
func (f PairParserFunc) Parse(ctx context.Context, path string) (domain.StatementBatch, error) {
	txns, refunds, err := f(ctx, path)
	if err != nil {
		return domain.StatementBatch{}, err
	}
	if refunds == nil {
		refunds = []domain.StatementTransaction{}
	}
	return domain.StatementBatch{Transactions: txns, Refunds: refunds}, nil
}

// Registry manages all registered statement parsers
type Registry struct {
	parsers map[string]domain.StatementParser
	mu      sync.RWMutex
	logger  *slog.Logger
}

// NewRegistry creates an empty registry
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		parsers: make(map[string]domain.StatementParser),
		logger:  logger,
	}
}

// Register adds a parser under a machine name
func (r *Registry) Register(name string, parser domain.StatementParser) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.parsers[name]; exists {
		return fmt.Errorf("statement parser %s already registered", name)
	}

	r.parsers[name] = parser
	r.logger.Debug("registered statement parser", slog.String("parser", name))
	return nil
}

// Get returns the parser registered under name
func (r *Registry) Get(name string) (domain.StatementParser, error) {
	r.mu.RLock()
	parser, exists := r.parsers[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: '%s'. Available parsers: %s", ErrUnknownSource, name, strings.Join(r.List(), ", "))
	}
	return parser, nil
}

// List returns all registered parser names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
