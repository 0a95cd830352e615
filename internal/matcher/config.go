package matcher

import "github.com/shopspring/decimal"

const (
	defaultAmountTolerance = "0.01" // strictly less than one cent
	defaultDaysBefore      = 1      // statement may post a day before the order
	defaultDaysAfter       = 2      // and up to two days after it
)

// Config holds matcher configuration
type Config struct {
	AmountTolerance decimal.Decimal
	DaysBefore      int
	DaysAfter       int
}

// DefaultConfig returns the tolerances the reconciler has always used
func DefaultConfig() Config {
	return Config{
		AmountTolerance: decimal.RequireFromString(defaultAmountTolerance),
		DaysBefore:      defaultDaysBefore,
		DaysAfter:       defaultDaysAfter,
	}
}
