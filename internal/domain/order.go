package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRow is one raw row of the order ledger, before any field is parsed
type LedgerRow struct {
	Line     int
	OrderID  string
	Date     string
	Total    string
	Payments string
	Refund   string
	Extra    map[string]string // Every other column, keyed by header name
}

// Order is a ledger row with its date and money fields parsed.
// Date is zero and Total invalid when the ledger value could not be parsed.
type Order struct {
	Line     int                 `json:"line"`
	OrderID  string              `json:"order_id"`
	Date     time.Time           `json:"date"`
	Total    decimal.NullDecimal `json:"total"`
	Payments string              `json:"payments,omitempty"`
	Refund   decimal.NullDecimal `json:"refund"`
	Extra    map[string]string   `json:"extra,omitempty"`
}

// HasRefund reports whether the order carries a refund amount
func (o Order) HasRefund() bool {
	return o.Refund.Valid
}

// Dated reports whether the ledger date parsed
func (o Order) Dated() bool {
	return !o.Date.IsZero()
}

// AtomicPayment is a single charge derived from an order.
// Order is the untouched source row; Date and Amount come from the split-payment
// fragment when there is one, otherwise from the row itself.
type AtomicPayment struct {
	Order    Order           `json:"order"`
	Date     time.Time       `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Fragment string          `json:"fragment,omitempty"`
}

// OrderID returns the id of the owning order
func (p AtomicPayment) OrderID() string {
	return p.Order.OrderID
}

// Skip records an input that was dropped while parsing
type Skip struct {
	Line     int    `json:"line"`
	OrderID  string `json:"order_id,omitempty"`
	Fragment string `json:"fragment,omitempty"`
	Reason   string `json:"reason"`
}
