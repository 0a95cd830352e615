package statement

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/tirasundara/amazon-reconciliation/internal/domain"
	"github.com/tirasundara/amazon-reconciliation/pkg/fileutil"
)

// LoadPattern expands a statement path or glob and loads every match
func LoadPattern(ctx context.Context, parser domain.StatementParser, pattern string, logger *slog.Logger) (domain.StatementBatch, error) {
	paths, err := fileutil.ExpandPattern(pattern)
	if err != nil {
		return domain.StatementBatch{}, fmt.Errorf("expanding statement path: %w", err)
	}
	return Load(ctx, parser, paths, logger)
}

// Load parses every statement file and merges the batches in path order.
// Files are parsed concurrently; any failure aborts the whole load.
func Load(ctx context.Context, parser domain.StatementParser, paths []string, logger *slog.Logger) (domain.StatementBatch, error) {
	if logger == nil {
		logger = slog.Default()
	}

	batches := make([]domain.StatementBatch, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			logger.Info("reading statement", slog.String("path", path))

			batch, err := parser.Parse(gctx, path)
			if err != nil {
				return fmt.Errorf("parsing statement %s: %w", path, err)
			}
			batches[i] = batch
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.StatementBatch{}, err
	}

	merged := domain.StatementBatch{
		Transactions: make([]domain.StatementTransaction, 0),
		Refunds:      make([]domain.StatementTransaction, 0),
	}
	for _, batch := range batches {
		merged.Append(batch)
	}

	return merged, nil
}
