package domain

import "github.com/shopspring/decimal"

// PaymentMatchResult is the outcome of pairing order payments with statement transactions
type PaymentMatchResult struct {
	Matched           []Match                `json:"matched"`
	UnmatchedTxns     []StatementTransaction `json:"unmatched_txns"`
	UnmatchedPayments []AtomicPayment        `json:"unmatched_payments"`
	UnmatchedOrders   []Order                `json:"unmatched_orders"` // Orders with no matched payment at all
}

// RefundMatchResult is the outcome of pairing order refunds with statement refunds
type RefundMatchResult struct {
	Matched                   []RefundMatch          `json:"matched"`
	UnmatchedOrderRefunds     []Order                `json:"unmatched_order_refunds"`
	UnmatchedStatementRefunds []StatementTransaction `json:"unmatched_statement_refunds"`
}

// ReconciliationResult containts the result of a reconciliation run
type ReconciliationResult struct {
	RunID              string             `json:"run_id"`
	TotalTxnsProcessed int                `json:"total_txns_processed"`
	Payments           PaymentMatchResult `json:"payments"`
	Refunds            RefundMatchResult  `json:"refunds"`
	Skipped            []Skip             `json:"skipped"`
	TotalDiscrepancies decimal.Decimal    `json:"total_discrepancies"`
}

// FullyReconciled reports whether every statement transaction and order refund found a counterpart
func (r ReconciliationResult) FullyReconciled() bool {
	return len(r.Payments.UnmatchedTxns) == 0 && len(r.Refunds.UnmatchedOrderRefunds) == 0
}
