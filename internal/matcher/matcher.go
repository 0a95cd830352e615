// Package matcher pairs order payments and refunds with statement lines.
//
// Both passes are greedy first-fit: inputs are visited in ledger order and each
// one takes the first still-unclaimed statement line its strategy accepts. No
// global optimum is sought, so input order decides ties.
package matcher

import (
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tirasundara/amazon-reconciliation/internal/domain"
)

// DefaultMatcher implements the PaymentMatcher and RefundMatcher interfaces
type DefaultMatcher struct {
	payments MatchingStrategy
	refunds  MatchingStrategy
	logger   *slog.Logger
}

var (
	_ domain.PaymentMatcher = (*DefaultMatcher)(nil)
	_ domain.RefundMatcher  = (*DefaultMatcher)(nil)
)

// NewDefaultMatcher creates a DefaultMatcher with the strategies derived from config
func NewDefaultMatcher(config Config, logger *slog.Logger) *DefaultMatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultMatcher{
		payments: NewDateWindowStrategy(config.AmountTolerance, config.DaysBefore, config.DaysAfter),
		refunds:  NewRefundStrategy(config.AmountTolerance),
		logger:   logger,
	}
}

// NewMatcherWithStrategies creates a DefaultMatcher with explicit strategies
func NewMatcherWithStrategies(payments, refunds MatchingStrategy, logger *slog.Logger) *DefaultMatcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefaultMatcher{
		payments: payments,
		refunds:  refunds,
		logger:   logger,
	}
}

// MatchPayments pairs atomic payments with statement transactions
func (m *DefaultMatcher) MatchPayments(payments []domain.AtomicPayment, txns []domain.StatementTransaction) domain.PaymentMatchResult {
	m.logger.Info("matching order payments",
		slog.Int("payments", len(payments)),
		slog.Int("statement_txns", len(txns)),
	)

	result := domain.PaymentMatchResult{
		Matched:           make([]domain.Match, 0),
		UnmatchedTxns:     make([]domain.StatementTransaction, 0),
		UnmatchedPayments: make([]domain.AtomicPayment, 0),
		UnmatchedOrders:   make([]domain.Order, 0),
	}

	pool := newClaimPool(txns)
	matchedOrders := make(map[string]bool)

	for _, payment := range payments {
		txn, found := pool.claim(m.payments, payment.Date, payment.Amount)
		if !found {
			result.UnmatchedPayments = append(result.UnmatchedPayments, payment)
			continue
		}

		result.Matched = append(result.Matched, domain.Match{
			Statement:  txn,
			Payment:    payment,
			AmountDiff: txn.Amount.Sub(payment.Amount).Abs(),
		})
		matchedOrders[payment.OrderID()] = true

		m.logger.Debug("matched payment",
			slog.String("order_id", payment.OrderID()),
			slog.String("amount", payment.Amount.StringFixed(2)),
			slog.String("statement", txn.Description),
		)
	}

	result.UnmatchedTxns = pool.remaining()

	// An order leaves the unmatched set as soon as any of its payments matched
	seen := make(map[string]bool)
	for _, payment := range payments {
		id := payment.OrderID()
		if matchedOrders[id] || seen[id] {
			continue
		}
		seen[id] = true
		result.UnmatchedOrders = append(result.UnmatchedOrders, payment.Order)
	}

	return result
}

// MatchRefunds pairs orders carrying a refund with statement refunds.
// Each statement refund settles at most one order.
func (m *DefaultMatcher) MatchRefunds(orders []domain.Order, refunds []domain.StatementTransaction) domain.RefundMatchResult {
	result := domain.RefundMatchResult{
		Matched:                   make([]domain.RefundMatch, 0),
		UnmatchedOrderRefunds:     make([]domain.Order, 0),
		UnmatchedStatementRefunds: make([]domain.StatementTransaction, 0),
	}

	pool := newClaimPool(refunds)
	refundOrders := 0

	for _, order := range orders {
		if !order.HasRefund() {
			continue
		}
		refundOrders++

		// An undated refund has nothing to compare against and stays unmatched
		if !order.Dated() {
			result.UnmatchedOrderRefunds = append(result.UnmatchedOrderRefunds, order)
			continue
		}

		refund, found := pool.claim(m.refunds, order.Date, order.Refund.Decimal)
		if !found {
			result.UnmatchedOrderRefunds = append(result.UnmatchedOrderRefunds, order)
			continue
		}

		result.Matched = append(result.Matched, domain.RefundMatch{
			Order:     order,
			Statement: refund,
		})
	}

	result.UnmatchedStatementRefunds = pool.remaining()

	m.logger.Info("matched refunds",
		slog.Int("order_refunds", refundOrders),
		slog.Int("statement_refunds", len(refunds)),
		slog.Int("matched", len(result.Matched)),
	)

	return result
}

// claimPool is the working set of one side of a pass. Lines are marked as
// claimed by index instead of being removed, so scan order never shifts.
type claimPool struct {
	txns    []domain.StatementTransaction
	claimed []bool
}

func newClaimPool(txns []domain.StatementTransaction) *claimPool {
	return &claimPool{
		txns:    txns,
		claimed: make([]bool, len(txns)),
	}
}

func (p *claimPool) claim(strategy MatchingStrategy, date time.Time, amount decimal.Decimal) (domain.StatementTransaction, bool) {
	// Filter out already claimed lines, remembering where each came from
	available := make([]domain.StatementTransaction, 0, len(p.txns))
	positions := make([]int, 0, len(p.txns))
	for i, txn := range p.txns {
		if p.claimed[i] {
			continue
		}
		available = append(available, txn)
		positions = append(positions, i)
	}

	idx, found := strategy.Match(date, amount, available)
	if !found {
		return domain.StatementTransaction{}, false
	}

	p.claimed[positions[idx]] = true
	return available[idx], true
}

func (p *claimPool) remaining() []domain.StatementTransaction {
	out := make([]domain.StatementTransaction, 0)
	for i, txn := range p.txns {
		if !p.claimed[i] {
			out = append(out, txn)
		}
	}
	return out
}
