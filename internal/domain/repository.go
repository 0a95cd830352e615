package domain

import "context"

// LedgerRepository defines the interface for reading the order ledger
//
//go:generate mockgen -destination=mocks/mock_repository.go -package=mocks -source=repository.go
type LedgerRepository interface {
	// GetRows reads every ledger row in file order
	GetRows() ([]LedgerRow, error)

	// GetRowsConcurrently is a concurrent version of GetRows(), rows keep file order
	GetRowsConcurrently() ([]LedgerRow, error)
}

// StatementParser extracts transactions and refunds from one statement document
type StatementParser interface {
	Parse(ctx context.Context, path string) (StatementBatch, error)
}
