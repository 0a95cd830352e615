package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tirasundara/amazon-reconciliation/internal/domain"
	"github.com/tirasundara/amazon-reconciliation/internal/normalizer"
	"github.com/tirasundara/amazon-reconciliation/internal/statement"
)

// LedgerNormalizer turns raw ledger rows into orders and atomic payments
type LedgerNormalizer interface {
	Normalize(rows []domain.LedgerRow) normalizer.Result
}

// Options tune how the service reads its inputs
type Options struct {
	ConcurrentLedger bool // Read the ledger with the worker pool
}

// ReconciliationService orchestrates the reconciliation process
type ReconciliationService struct {
	ledgerRepo     domain.LedgerRepository
	parser         domain.StatementParser
	normalizer     LedgerNormalizer
	paymentMatcher domain.PaymentMatcher
	refundMatcher  domain.RefundMatcher
	opts           Options
	logger         *slog.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	ledgerRepo domain.LedgerRepository,
	parser domain.StatementParser,
	normalizer LedgerNormalizer,
	paymentMatcher domain.PaymentMatcher,
	refundMatcher domain.RefundMatcher,
	opts Options,
	logger *slog.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReconciliationService{
		ledgerRepo:     ledgerRepo,
		parser:         parser,
		normalizer:     normalizer,
		paymentMatcher: paymentMatcher,
		refundMatcher:  refundMatcher,
		opts:           opts,
		logger:         logger,
	}
}

// Reconcile matches the order ledger against every statement file matched by
// statementPattern, a single path or a glob
func (s *ReconciliationService) Reconcile(ctx context.Context, statementPattern string) (domain.ReconciliationResult, error) {
	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID))

	// Get statement txns -- from all statement files
	batch, err := statement.LoadPattern(ctx, s.parser, statementPattern, logger)
	if err != nil {
		return domain.ReconciliationResult{}, fmt.Errorf("loading statements: %w", err)
	}

	rows, err := s.fetchLedger()
	if err != nil {
		return domain.ReconciliationResult{}, fmt.Errorf("fetching order ledger: %w", err)
	}

	normalized := s.normalizer.Normalize(rows)
	for _, skip := range normalized.Skipped {
		logger.Warn("skipped ledger input",
			slog.Int("line", skip.Line),
			slog.String("order_id", skip.OrderID),
			slog.String("fragment", skip.Fragment),
			slog.String("reason", skip.Reason),
		)
	}

	if err := ctx.Err(); err != nil {
		return domain.ReconciliationResult{}, err
	}

	// The two passes share no state, each keeps its own scan order
	var (
		payments domain.PaymentMatchResult
		refunds  domain.RefundMatchResult
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		payments = s.paymentMatcher.MatchPayments(normalized.Payments, batch.Transactions)
		return nil
	})
	g.Go(func() error {
		refunds = s.refundMatcher.MatchRefunds(normalized.Orders, batch.Refunds)
		return nil
	})
	_ = g.Wait()

	result := domain.ReconciliationResult{
		RunID:              runID,
		TotalTxnsProcessed: len(batch.Transactions) + len(batch.Refunds),
		Payments:           payments,
		Refunds:            refunds,
		Skipped:            normalized.Skipped,
		TotalDiscrepancies: s.calculateTotalDiscrepancies(payments.Matched),
	}
	if result.Skipped == nil {
		result.Skipped = make([]domain.Skip, 0)
	}

	logger.Info("reconciliation finished",
		slog.Int("matched", len(payments.Matched)),
		slog.Int("unmatched_txns", len(payments.UnmatchedTxns)),
		slog.Int("unmatched_orders", len(payments.UnmatchedOrders)),
		slog.Int("matched_refunds", len(refunds.Matched)),
		slog.Int("skipped", len(result.Skipped)),
	)

	return result, nil
}

func (s *ReconciliationService) fetchLedger() ([]domain.LedgerRow, error) {
	if s.opts.ConcurrentLedger {
		return s.ledgerRepo.GetRowsConcurrently()
	}
	return s.ledgerRepo.GetRows()
}

func (s *ReconciliationService) calculateTotalDiscrepancies(matches []domain.Match) decimal.Decimal {
	total := decimal.Zero

	for _, match := range matches {
		total = total.Add(match.AmountDiff)
	}

	return total
}
