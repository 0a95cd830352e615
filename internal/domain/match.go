package domain

import "github.com/shopspring/decimal"

// Match pairs a statement transaction with the order payment it settles
type Match struct {
	Statement  StatementTransaction `json:"statement"`
	Payment    AtomicPayment        `json:"payment"`
	AmountDiff decimal.Decimal      `json:"amount_diff"`
}

// RefundMatch pairs an order refund with the statement line that credited it
type RefundMatch struct {
	Order     Order                `json:"order"`
	Statement StatementTransaction `json:"statement"`
}
