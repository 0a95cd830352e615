package matcher

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tirasundara/amazon-reconciliation/internal/domain"
)

// MatchingStrategy picks the first acceptable candidate for a dated amount.
// It returns the candidate's index in the given slice.
type MatchingStrategy interface {
	Match(date time.Time, amount decimal.Decimal, candidates []domain.StatementTransaction) (int, bool)
}

// DateWindowStrategy matches charges posted within a window around the order date
type DateWindowStrategy struct {
	AmountTolerance decimal.Decimal
	DaysBefore      int
	DaysAfter       int
}

// NewDateWindowStrategy creates a new DateWindowStrategy
func NewDateWindowStrategy(tolerance decimal.Decimal, daysBefore, daysAfter int) *DateWindowStrategy {
	return &DateWindowStrategy{
		AmountTolerance: tolerance,
		DaysBefore:      daysBefore,
		DaysAfter:       daysAfter,
	}
}

// Match implements the MatchingStrategy interface
func (s *DateWindowStrategy) Match(date time.Time, amount decimal.Decimal, candidates []domain.StatementTransaction) (int, bool) {
	minDate := date.AddDate(0, 0, -s.DaysBefore)
	maxDate := date.AddDate(0, 0, s.DaysAfter)

	for i, txn := range candidates {
		// Both ends inclusive
		if txn.Date.Before(minDate) || txn.Date.After(maxDate) {
			continue
		}

		if !withinTolerance(txn.Amount, amount, s.AmountTolerance) {
			continue
		}

		return i, true
	}

	return -1, false
}

// RefundStrategy matches statement refunds posted on or after the order date
type RefundStrategy struct {
	AmountTolerance decimal.Decimal
}

// NewRefundStrategy creates a new RefundStrategy
func NewRefundStrategy(tolerance decimal.Decimal) *RefundStrategy {
	return &RefundStrategy{
		AmountTolerance: tolerance,
	}
}

// Match implements the MatchingStrategy interface.
// Statement refunds are negative while order refunds are positive, so the
// statement side is compared by magnitude.
func (s *RefundStrategy) Match(date time.Time, amount decimal.Decimal, candidates []domain.StatementTransaction) (int, bool) {
	for i, refund := range candidates {
		if refund.Date.Before(date) {
			continue
		}

		if !withinTolerance(refund.Amount.Abs(), amount, s.AmountTolerance) {
			continue
		}

		return i, true
	}

	return -1, false
}

func withinTolerance(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(tolerance)
}
