package repository

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

func parseStatementAmount(value string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(value))

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format: %q", value)
	}
	return amount, nil
}
