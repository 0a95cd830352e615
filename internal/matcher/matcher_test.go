package matcher_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tirasundara/amazon-reconciliation/internal/domain"
	"github.com/tirasundara/amazon-reconciliation/internal/matcher"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func payment(t *testing.T, orderID, date, value string) domain.AtomicPayment {
	order := domain.Order{OrderID: orderID, Date: parseTime(t, date), Total: decimal.NewNullDecimal(amount(value))}
	return domain.AtomicPayment{Order: order, Date: order.Date, Amount: order.Total.Decimal}
}

func statementTxn(t *testing.T, date, desc, value string) domain.StatementTransaction {
	return domain.StatementTransaction{Date: parseTime(t, date), Description: desc, Amount: amount(value)}
}

func TestMatchPayments_EndToEnd(t *testing.T) {
	m := matcher.NewDefaultMatcher(matcher.DefaultConfig(), nil)

	txns := []domain.StatementTransaction{statementTxn(t, "2024-01-03", "AMZN", "20.00")}
	payments := []domain.AtomicPayment{payment(t, "O1", "2024-01-02", "20.00")}

	result := m.MatchPayments(payments, txns)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "O1", result.Matched[0].Payment.OrderID())
	assert.Equal(t, "AMZN", result.Matched[0].Statement.Description)
	assert.True(t, result.Matched[0].AmountDiff.IsZero())
	assert.Empty(t, result.UnmatchedTxns)
	assert.Empty(t, result.UnmatchedPayments)
	assert.Empty(t, result.UnmatchedOrders)
}

func TestMatchPayments_FirstFitDeterminism(t *testing.T) {
	m := matcher.NewDefaultMatcher(matcher.DefaultConfig(), nil)

	txns := []domain.StatementTransaction{
		statementTxn(t, "2024-01-04", "first", "15.00"),
		statementTxn(t, "2024-01-03", "second", "15.00"),
	}
	payments := []domain.AtomicPayment{
		payment(t, "O1", "2024-01-03", "15.00"),
		payment(t, "O2", "2024-01-03", "15.00"),
	}

	result := m.MatchPayments(payments, txns)

	require.Len(t, result.Matched, 2)
	// O1 takes the earlier line even though the later one is a same-day match
	assert.Equal(t, "O1", result.Matched[0].Payment.OrderID())
	assert.Equal(t, "first", result.Matched[0].Statement.Description)
	// The later line stays available for the next payment
	assert.Equal(t, "O2", result.Matched[1].Payment.OrderID())
	assert.Equal(t, "second", result.Matched[1].Statement.Description)
}

func TestMatchPayments_GreedyCanStrandALaterPayment(t *testing.T) {
	m := matcher.NewDefaultMatcher(matcher.DefaultConfig(), nil)

	// Only line A fits O2, but O1 is visited first and takes it
	txns := []domain.StatementTransaction{
		statementTxn(t, "2024-01-01", "A", "9.99"),
		statementTxn(t, "2024-01-05", "B", "9.99"),
	}
	payments := []domain.AtomicPayment{
		payment(t, "O1", "2024-01-02", "9.99"),
		payment(t, "O2", "2023-12-31", "9.99"),
	}

	result := m.MatchPayments(payments, txns)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "A", result.Matched[0].Statement.Description)
	require.Len(t, result.UnmatchedTxns, 1)
	assert.Equal(t, "B", result.UnmatchedTxns[0].Description)
	require.Len(t, result.UnmatchedOrders, 1)
	assert.Equal(t, "O2", result.UnmatchedOrders[0].OrderID)
}

func TestMatchPayments_Partition(t *testing.T) {
	m := matcher.NewDefaultMatcher(matcher.DefaultConfig(), nil)

	txns := []domain.StatementTransaction{
		statementTxn(t, "2024-02-01", "t1", "10.00"),
		statementTxn(t, "2024-02-02", "t2", "11.00"),
		statementTxn(t, "2024-02-03", "t3", "12.00"),
		statementTxn(t, "2024-02-03", "t4", "12.00"),
		statementTxn(t, "2024-03-01", "t5", "99.00"),
	}
	payments := []domain.AtomicPayment{
		payment(t, "P1", "2024-02-01", "10.00"),
		payment(t, "P2", "2024-02-02", "11.00"),
		payment(t, "P3", "2024-02-03", "12.00"),
		payment(t, "P4", "2024-02-03", "12.00"),
		payment(t, "P5", "2024-02-03", "12.00"),
		payment(t, "P6", "2024-05-01", "1.00"),
	}

	result := m.MatchPayments(payments, txns)

	assert.Equal(t, len(txns), len(result.Matched)+len(result.UnmatchedTxns))
	assert.Equal(t, len(payments), len(result.Matched)+len(result.UnmatchedPayments))

	seenTxns := make(map[string]int)
	for _, match := range result.Matched {
		seenTxns[match.Statement.Description]++
	}
	for _, txn := range result.UnmatchedTxns {
		seenTxns[txn.Description]++
	}
	for _, txn := range txns {
		assert.Equal(t, 1, seenTxns[txn.Description], "statement line %s", txn.Description)
	}

	seenPayments := make(map[string]int)
	for _, match := range result.Matched {
		seenPayments[match.Payment.OrderID()]++
	}
	for _, p := range result.UnmatchedPayments {
		seenPayments[p.OrderID()]++
	}
	for _, p := range payments {
		assert.Equal(t, 1, seenPayments[p.OrderID()], "payment %s", p.OrderID())
	}
}

func TestMatchPayments_SplitOrderGrouping(t *testing.T) {
	m := matcher.NewDefaultMatcher(matcher.DefaultConfig(), nil)

	split := domain.Order{OrderID: "S1", Date: parseTime(t, "2024-01-02"), Total: decimal.NewNullDecimal(amount("25.50"))}
	unpaid := domain.Order{OrderID: "S2", Date: parseTime(t, "2024-01-02"), Total: decimal.NewNullDecimal(amount("30.00"))}
	payments := []domain.AtomicPayment{
		{Order: split, Date: parseTime(t, "2024-01-02"), Amount: amount("10.00")},
		{Order: split, Date: parseTime(t, "2024-01-05"), Amount: amount("15.50")},
		{Order: unpaid, Date: parseTime(t, "2024-01-02"), Amount: amount("10.00")},
		{Order: unpaid, Date: parseTime(t, "2024-01-06"), Amount: amount("20.00")},
	}
	txns := []domain.StatementTransaction{statementTxn(t, "2024-01-03", "AMZN", "10.00")}

	result := m.MatchPayments(payments, txns)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "S1", result.Matched[0].Payment.OrderID())

	// S1 is no longer reported as an unmatched order, its stray payment still is
	require.Len(t, result.UnmatchedOrders, 1)
	assert.Equal(t, "S2", result.UnmatchedOrders[0].OrderID)
	assert.Len(t, result.UnmatchedPayments, 3)
}

func TestMatchRefunds(t *testing.T) {
	m := matcher.NewDefaultMatcher(matcher.DefaultConfig(), nil)

	orders := []domain.Order{
		{OrderID: "R1", Date: parseTime(t, "2024-01-10"), Refund: decimal.NewNullDecimal(amount("5.00"))},
		{OrderID: "N1", Date: parseTime(t, "2024-01-10")},
		{OrderID: "R2", Date: parseTime(t, "2024-01-10"), Refund: decimal.NewNullDecimal(amount("5.00"))},
		{OrderID: "R3", Date: parseTime(t, "2024-01-20"), Refund: decimal.NewNullDecimal(amount("8.00"))},
	}
	refunds := []domain.StatementTransaction{
		statementTxn(t, "2024-01-09", "too early", "-5.00"),
		statementTxn(t, "2024-01-15", "refund", "-5.00"),
		statementTxn(t, "2024-01-25", "other", "-3.00"),
	}

	result := m.MatchRefunds(orders, refunds)

	require.Len(t, result.Matched, 1)
	assert.Equal(t, "R1", result.Matched[0].Order.OrderID)
	assert.Equal(t, "refund", result.Matched[0].Statement.Description)

	// The statement refund is single-use, so R2 cannot reuse it
	require.Len(t, result.UnmatchedOrderRefunds, 2)
	assert.Equal(t, "R2", result.UnmatchedOrderRefunds[0].OrderID)
	assert.Equal(t, "R3", result.UnmatchedOrderRefunds[1].OrderID)

	require.Len(t, result.UnmatchedStatementRefunds, 2)
	assert.Equal(t, "too early", result.UnmatchedStatementRefunds[0].Description)
	assert.Equal(t, "other", result.UnmatchedStatementRefunds[1].Description)
}

func TestMatchRefunds_StatementBeforeOrderStaysUnmatched(t *testing.T) {
	m := matcher.NewDefaultMatcher(matcher.DefaultConfig(), nil)

	orders := []domain.Order{
		{OrderID: "R1", Date: parseTime(t, "2024-01-10"), Refund: decimal.NewNullDecimal(amount("5.00"))},
	}
	refunds := []domain.StatementTransaction{statementTxn(t, "2024-01-09", "AMZN", "-5.00")}

	result := m.MatchRefunds(orders, refunds)

	assert.Empty(t, result.Matched)
	require.Len(t, result.UnmatchedOrderRefunds, 1)
	assert.Equal(t, "R1", result.UnmatchedOrderRefunds[0].OrderID)
	assert.Len(t, result.UnmatchedStatementRefunds, 1)
}

func TestMatchRefunds_UndatedOrderNeverClaims(t *testing.T) {
	m := matcher.NewDefaultMatcher(matcher.DefaultConfig(), nil)

	orders := []domain.Order{
		{OrderID: "U1", Refund: decimal.NewNullDecimal(amount("5.00"))},
		{OrderID: "R1", Date: parseTime(t, "2024-01-10"), Refund: decimal.NewNullDecimal(amount("5.00"))},
	}
	refunds := []domain.StatementTransaction{statementTxn(t, "2024-01-12", "AMZN", "-5.00")}

	result := m.MatchRefunds(orders, refunds)

	// The refund is left for the dated order
	require.Len(t, result.Matched, 1)
	assert.Equal(t, "R1", result.Matched[0].Order.OrderID)
	require.Len(t, result.UnmatchedOrderRefunds, 1)
	assert.Equal(t, "U1", result.UnmatchedOrderRefunds[0].OrderID)
	assert.Empty(t, result.UnmatchedStatementRefunds)
}

func TestMatchPayments_CustomStrategies(t *testing.T) {
	wide := matcher.NewDateWindowStrategy(amount("0.50"), 5, 5)
	m := matcher.NewMatcherWithStrategies(wide, matcher.NewRefundStrategy(amount("0.01")), nil)

	txns := []domain.StatementTransaction{statementTxn(t, "2024-01-14", "AMZN", "20.40")}
	payments := []domain.AtomicPayment{payment(t, "O1", "2024-01-10", "20.00")}

	result := m.MatchPayments(payments, txns)

	require.Len(t, result.Matched, 1)
	assert.True(t, amount("0.40").Equal(result.Matched[0].AmountDiff))
}
