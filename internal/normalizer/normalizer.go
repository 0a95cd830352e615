// Package normalizer turns raw order ledger rows into atomic payments.
//
// A ledger row normally stands for one charge. When its payments column lists
// several dated charges ("Jan 2, 2024: $10.00; Jan 5, 2024: $15.50") the row is
// expanded into one payment per listed charge instead. Rows and fragments that
// cannot be parsed are dropped and reported as skips; they never fail the batch.
package normalizer

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tirasundara/amazon-reconciliation/internal/domain"
)

const (
	ReasonInvalidDate     = "invalid date"
	ReasonInvalidTotal    = "invalid total"
	ReasonInvalidRefund   = "invalid refund"
	ReasonFragmentPattern = "fragment does not match payment pattern"
	ReasonFragmentDate    = "invalid fragment date"
	ReasonFragmentAmount  = "invalid fragment amount"
	ReasonNoFragments     = "no payment fragment parsed"
)

// DefaultDateLayouts are tried in order when parsing the ledger date column
var DefaultDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

var fragmentDateLayouts = []string{
	"January 2, 2006",
	"Jan 2, 2006",
}

// <month-name> <day>, <year>: $<amount>
var paymentPattern = regexp.MustCompile(`(\w+ \d{1,2}, \d{4}):\s*\$([-\d,.]+)`)

// Result holds everything one normalization pass produced
type Result struct {
	Orders   []domain.Order
	Payments []domain.AtomicPayment
	Skipped  []domain.Skip
}

// Normalizer parses ledger rows and expands split payments
type Normalizer struct {
	layouts []string
	logger  *slog.Logger
}

// NewNormalizer creates a Normalizer. With no layouts, DefaultDateLayouts is used.
func NewNormalizer(layouts []string, logger *slog.Logger) *Normalizer {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Normalizer{
		layouts: layouts,
		logger:  logger,
	}
}

// Normalize parses the ledger then expands every order into atomic payments
func (n *Normalizer) Normalize(rows []domain.LedgerRow) Result {
	orders, skipped := n.ParseLedger(rows)
	payments, fragmentSkips := n.Expand(orders)

	return Result{
		Orders:   orders,
		Payments: payments,
		Skipped:  append(skipped, fragmentSkips...),
	}
}

// ParseLedger parses the date, total and refund of each row.
// A row with an unparseable date is dropped unless it carries a refund, in which
// case it is kept undated so the refund pass reports it as unmatched. An
// unparseable total keeps the row for the refund pass but gives it no row-level
// payment. An unparseable refund only clears the refund.
func (n *Normalizer) ParseLedger(rows []domain.LedgerRow) ([]domain.Order, []domain.Skip) {
	orders := make([]domain.Order, 0, len(rows))
	var skipped []domain.Skip

	for _, row := range rows {
		order := domain.Order{
			Line:     row.Line,
			OrderID:  row.OrderID,
			Payments: row.Payments,
			Extra:    row.Extra,
		}

		if strings.TrimSpace(row.Refund) != "" {
			refund, err := ParseAmount(row.Refund)
			if err != nil {
				skipped = append(skipped, n.skip(row.Line, row.OrderID, row.Refund, ReasonInvalidRefund))
			} else {
				order.Refund = decimal.NewNullDecimal(refund)
			}
		}

		date, err := parseDate(row.Date, n.layouts)
		if err != nil {
			skipped = append(skipped, n.skip(row.Line, row.OrderID, "", ReasonInvalidDate))
			if order.HasRefund() {
				orders = append(orders, order)
			}
			continue
		}
		order.Date = date

		total, err := ParseAmount(row.Total)
		if err != nil {
			skipped = append(skipped, n.skip(row.Line, row.OrderID, "", ReasonInvalidTotal))
		} else {
			order.Total = decimal.NewNullDecimal(total)
		}

		orders = append(orders, order)
	}

	return orders, skipped
}

// Expand turns each order into one or more atomic payments, keeping ledger order
func (n *Normalizer) Expand(orders []domain.Order) ([]domain.AtomicPayment, []domain.Skip) {
	payments := make([]domain.AtomicPayment, 0, len(orders))
	var skipped []domain.Skip

	for _, order := range orders {
		// Undated rows only exist for the refund pass
		if !order.Dated() {
			continue
		}

		if !isSplitPayment(order.Payments) {
			// Without a total there is no charge to match; the skip was recorded on parse
			if !order.Total.Valid {
				continue
			}
			payments = append(payments, domain.AtomicPayment{
				Order:  order,
				Date:   order.Date,
				Amount: order.Total.Decimal,
			})
			continue
		}

		parsed := 0
		for _, fragment := range splitFragments(order.Payments) {
			date, amount, reason := parseFragment(fragment)
			if reason != "" {
				// Lossy on purpose: the order total is not used as a fallback
				skipped = append(skipped, n.skip(order.Line, order.OrderID, fragment, reason))
				continue
			}

			payments = append(payments, domain.AtomicPayment{
				Order:    order,
				Date:     date,
				Amount:   amount,
				Fragment: fragment,
			})
			parsed++
		}

		if parsed == 0 {
			skipped = append(skipped, n.skip(order.Line, order.OrderID, order.Payments, ReasonNoFragments))
		}
	}

	return payments, skipped
}

func (n *Normalizer) skip(line int, orderID, fragment, reason string) domain.Skip {
	n.logger.Debug("skipping ledger input",
		slog.Int("line", line),
		slog.String("order_id", orderID),
		slog.String("fragment", fragment),
		slog.String("reason", reason),
	)

	return domain.Skip{
		Line:     line,
		OrderID:  orderID,
		Fragment: fragment,
		Reason:   reason,
	}
}

// isSplitPayment is the cheap gate for "looks like a multi-entry payments string"
func isSplitPayment(payments string) bool {
	return payments != "" && strings.Contains(payments, ";") && strings.Contains(payments, ":")
}

func splitFragments(payments string) []string {
	payments = strings.ReplaceAll(payments, "\u00a0", " ")

	var fragments []string
	for _, fragment := range strings.Split(payments, ";") {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		fragments = append(fragments, fragment)
	}
	return fragments
}

// parseFragment returns a non-empty reason when the fragment must be skipped
func parseFragment(fragment string) (time.Time, decimal.Decimal, string) {
	groups := paymentPattern.FindStringSubmatch(fragment)
	if groups == nil {
		return time.Time{}, decimal.Zero, ReasonFragmentPattern
	}

	date, err := parseDate(groups[1], fragmentDateLayouts)
	if err != nil {
		return time.Time{}, decimal.Zero, ReasonFragmentDate
	}

	amount, err := ParseAmount(groups[2])
	if err != nil {
		return time.Time{}, decimal.Zero, ReasonFragmentAmount
	}

	return date, amount, ""
}

func parseDate(value string, layouts []string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("no layout matches date %q", value)
}

// ParseAmount parses a currency amount, tolerating a dollar sign, thousands
// separators and a leading minus
func ParseAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing amount %q: %w", value, err)
	}
	return amount, nil
}
