package normalizer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tirasundara/amazon-reconciliation/internal/domain"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize_SplitPaymentExpansion(t *testing.T) {
	n := NewNormalizer(nil, nil)
	rows := []domain.LedgerRow{
		{
			Line:     2,
			OrderID:  "A1",
			Date:     "2024-01-02",
			Total:    "25.50",
			Payments: "Jan 2, 2024: $10.00; Jan 5, 2024: $15.50",
			Extra:    map[string]string{"items": "Book"},
		},
	}

	result := n.Normalize(rows)

	require.Len(t, result.Payments, 2)
	assert.Empty(t, result.Skipped)

	assert.Equal(t, "A1", result.Payments[0].OrderID())
	assert.Equal(t, day(2024, time.January, 2), result.Payments[0].Date)
	assert.True(t, decimal.RequireFromString("10.00").Equal(result.Payments[0].Amount))

	assert.Equal(t, "A1", result.Payments[1].OrderID())
	assert.Equal(t, day(2024, time.January, 5), result.Payments[1].Date)
	assert.True(t, decimal.RequireFromString("15.50").Equal(result.Payments[1].Amount))

	// Non-payment fields are carried on every payment
	assert.Equal(t, "Book", result.Payments[1].Order.Extra["items"])
	assert.True(t, decimal.RequireFromString("25.50").Equal(result.Payments[1].Order.Total.Decimal))
}

func TestNormalize_SingleRowPayment(t *testing.T) {
	n := NewNormalizer(nil, nil)

	tests := []struct {
		name     string
		payments string
	}{
		{name: "no payments column", payments: ""},
		{name: "single entry without semicolon", payments: "Jan 2, 2024: $20.00"},
		{name: "free text without colon", payments: "Visa ending in 1234; gift card"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := n.Normalize([]domain.LedgerRow{
				{OrderID: "O1", Date: "2024-01-02", Total: "20.00", Payments: tt.payments},
			})

			require.Len(t, result.Payments, 1)
			assert.Equal(t, day(2024, time.January, 2), result.Payments[0].Date)
			assert.True(t, decimal.RequireFromString("20.00").Equal(result.Payments[0].Amount))
			assert.Empty(t, result.Payments[0].Fragment)
		})
	}
}

func TestNormalize_PartialFragmentFailureIsLossy(t *testing.T) {
	n := NewNormalizer(nil, nil)
	rows := []domain.LedgerRow{
		{
			OrderID:  "A2",
			Date:     "2024-03-01",
			Total:    "100.00",
			Payments: "Mar 1, 2024: $40.00; gift card: applied; Mar 3, 2024: $1,234.56",
		},
	}

	result := n.Normalize(rows)

	// The failing fragment is dropped, the row total is not used as a fallback
	require.Len(t, result.Payments, 2)
	assert.True(t, decimal.RequireFromString("40.00").Equal(result.Payments[0].Amount))
	assert.True(t, decimal.RequireFromString("1234.56").Equal(result.Payments[1].Amount))

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, ReasonFragmentPattern, result.Skipped[0].Reason)
	assert.Equal(t, "gift card: applied", result.Skipped[0].Fragment)
}

func TestNormalize_AllFragmentsFail(t *testing.T) {
	n := NewNormalizer(nil, nil)
	rows := []domain.LedgerRow{
		{OrderID: "A3", Date: "2024-03-01", Total: "10.00", Payments: "points: 100; promo: 5"},
	}

	result := n.Normalize(rows)

	// The order contributes no payment at all
	assert.Empty(t, result.Payments)
	require.Len(t, result.Orders, 1)

	reasons := make([]string, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		reasons = append(reasons, s.Reason)
	}
	assert.Equal(t, []string{ReasonFragmentPattern, ReasonFragmentPattern, ReasonNoFragments}, reasons)
}

func TestNormalize_NonBreakingSpacesAndNegativeAmounts(t *testing.T) {
	n := NewNormalizer(nil, nil)
	rows := []domain.LedgerRow{
		{
			OrderID:  "A4",
			Date:     "2024-02-10",
			Total:    "5.00",
			Payments: "Feb\u00a010, 2024: $12.00;\u00a0Feb 11, 2024: $-7.00;",
		},
	}

	result := n.Normalize(rows)

	require.Len(t, result.Payments, 2)
	assert.Equal(t, day(2024, time.February, 10), result.Payments[0].Date)
	assert.True(t, decimal.RequireFromString("-7.00").Equal(result.Payments[1].Amount))
}

func TestParseLedger_DropsBadRows(t *testing.T) {
	n := NewNormalizer(nil, nil)
	rows := []domain.LedgerRow{
		{Line: 2, OrderID: "good", Date: "2024-01-02", Total: "1.00"},
		{Line: 3, OrderID: "bad-date", Date: "not a date", Total: "1.00"},
		{Line: 4, OrderID: "bad-total", Date: "2024-01-02", Total: "n/a"},
		{Line: 5, OrderID: "bad-refund", Date: "2024-01-02", Total: "1.00", Refund: "lots"},
		{Line: 6, OrderID: "refund", Date: "01/15/2024", Total: "$1,001.00", Refund: "5.00"},
	}

	orders, skipped := n.ParseLedger(rows)

	require.Len(t, orders, 4)
	assert.Equal(t, "good", orders[0].OrderID)

	// A bad total keeps the row with an invalid total
	assert.Equal(t, "bad-total", orders[1].OrderID)
	assert.False(t, orders[1].Total.Valid)

	assert.Equal(t, "bad-refund", orders[2].OrderID)
	assert.False(t, orders[2].HasRefund())
	assert.True(t, orders[3].HasRefund())
	assert.True(t, decimal.RequireFromString("5.00").Equal(orders[3].Refund.Decimal))
	assert.True(t, decimal.RequireFromString("1001").Equal(orders[3].Total.Decimal))
	assert.Equal(t, day(2024, time.January, 15), orders[3].Date)

	require.Len(t, skipped, 3)
	assert.Equal(t, ReasonInvalidDate, skipped[0].Reason)
	assert.Equal(t, 3, skipped[0].Line)
	assert.Equal(t, ReasonInvalidTotal, skipped[1].Reason)
	assert.Equal(t, ReasonInvalidRefund, skipped[2].Reason)
}

func TestNormalize_RefundRowsSurviveBadDateOrTotal(t *testing.T) {
	n := NewNormalizer(nil, nil)
	rows := []domain.LedgerRow{
		{Line: 2, OrderID: "no-total", Date: "2024-01-10", Total: "", Refund: "5.00"},
		{Line: 3, OrderID: "no-date", Date: "", Total: "3.00", Refund: "3.00"},
		{Line: 4, OrderID: "split-no-total", Date: "2024-01-10", Total: "",
			Payments: "Jan 10, 2024: $4.00; Jan 11, 2024: $6.00"},
		{Line: 5, OrderID: "dropped", Date: "", Total: "3.00"},
	}

	result := n.Normalize(rows)

	// Both refund rows stay available for the refund pass
	require.Len(t, result.Orders, 3)
	assert.Equal(t, "no-total", result.Orders[0].OrderID)
	assert.True(t, result.Orders[0].Dated())
	assert.False(t, result.Orders[0].Total.Valid)
	assert.Equal(t, "no-date", result.Orders[1].OrderID)
	assert.False(t, result.Orders[1].Dated())
	assert.True(t, result.Orders[1].HasRefund())

	// Neither yields a row-level payment; split fragments do not need the total
	require.Len(t, result.Payments, 2)
	assert.Equal(t, "split-no-total", result.Payments[0].OrderID())
	assert.Equal(t, "split-no-total", result.Payments[1].OrderID())

	reasons := make([]string, 0, len(result.Skipped))
	for _, s := range result.Skipped {
		reasons = append(reasons, s.OrderID+": "+s.Reason)
	}
	assert.Equal(t, []string{
		"no-total: " + ReasonInvalidTotal,
		"no-date: " + ReasonInvalidDate,
		"split-no-total: " + ReasonInvalidTotal,
		"dropped: " + ReasonInvalidDate,
	}, reasons)
}

func TestExpand_IdempotentOnAtomicOutput(t *testing.T) {
	n := NewNormalizer(nil, nil)
	orders := []domain.Order{
		{OrderID: "O1", Date: day(2024, time.January, 2), Total: decimal.NewNullDecimal(decimal.RequireFromString("20.00"))},
		{OrderID: "O2", Date: day(2024, time.January, 3), Total: decimal.NewNullDecimal(decimal.RequireFromString("7.50"))},
	}

	first, skipped := n.Expand(orders)
	require.Empty(t, skipped)

	// Feed the atomic payments back in as single-entry orders
	again := make([]domain.Order, 0, len(first))
	for _, p := range first {
		again = append(again, domain.Order{OrderID: p.OrderID(), Date: p.Date, Total: decimal.NewNullDecimal(p.Amount)})
	}
	second, skipped := n.Expand(again)
	require.Empty(t, skipped)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].OrderID(), second[i].OrderID())
		assert.Equal(t, first[i].Date, second[i].Date)
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "10.00", want: "10"},
		{in: "1,234.56", want: "1234.56"},
		{in: "-7.25", want: "-7.25"},
		{in: " $42.10 ", want: "42.1"},
		{in: "", wantErr: true},
		{in: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "%s parsed as %s", tt.in, got)
	}
}
