package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementTransaction represents a line item from a bank or credit card statement
type StatementTransaction struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // Refunds are negative
}

// IsRefund reports whether the line credits the account
func (t StatementTransaction) IsRefund() bool {
	return t.Amount.IsNegative()
}

// StatementBatch is the two-list form every statement source is normalized to
type StatementBatch struct {
	Transactions []StatementTransaction `json:"transactions"`
	Refunds      []StatementTransaction `json:"refunds"`
}

// NewStatementBatch wraps a single transaction list, leaving refunds empty
func NewStatementBatch(txns []StatementTransaction) StatementBatch {
	return StatementBatch{
		Transactions: txns,
		Refunds:      []StatementTransaction{},
	}
}

// SplitRefunds moves negative amounts into the refund list, keeping input order on both sides
func SplitRefunds(txns []StatementTransaction) StatementBatch {
	batch := StatementBatch{
		Transactions: make([]StatementTransaction, 0, len(txns)),
		Refunds:      make([]StatementTransaction, 0),
	}
	for _, txn := range txns {
		if txn.IsRefund() {
			batch.Refunds = append(batch.Refunds, txn)
			continue
		}
		batch.Transactions = append(batch.Transactions, txn)
	}
	return batch
}

// Append concatenates another batch after this one
func (b *StatementBatch) Append(other StatementBatch) {
	b.Transactions = append(b.Transactions, other.Transactions...)
	b.Refunds = append(b.Refunds, other.Refunds...)
}
