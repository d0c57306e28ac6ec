package deposit

import "context"

// Repository defines the interface for deposit persistence
type Repository interface {
	Create(ctx context.Context, deposit *Deposit) error
	Get(ctx context.Context, id string) (*Deposit, error)
	Update(ctx context.Context, deposit *Deposit) error
	Delete(ctx context.Context, id string) error
	ListByStudent(ctx context.Context, studentID string) ([]*Deposit, error)
	// GetByTransactionID is the idempotency lookup for gateway callbacks
	GetByTransactionID(ctx context.Context, transactionID string) (*Deposit, error)
	// LookupByTransactionID finds a deposit across schools. Gateway
	// callbacks carry no school header; they authenticate by signature
	// and the found row supplies the scope.
	LookupByTransactionID(ctx context.Context, transactionID string) (*Deposit, error)
}
