package domain

// PaymentMatcher defines the interface for pairing order payments with statement transactions
type PaymentMatcher interface {
	MatchPayments(payments []AtomicPayment, txns []StatementTransaction) PaymentMatchResult
}

// RefundMatcher defines the interface for pairing order refunds with statement refunds
type RefundMatcher interface {
	MatchRefunds(orders []Order, refunds []StatementTransaction) RefundMatchResult
}
