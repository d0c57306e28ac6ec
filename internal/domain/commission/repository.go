package commission

import "context"

// Repository defines the interface for commission persistence
type Repository interface {
	Create(ctx context.Context, commission *Commission) error
	// GetByPaymentID is the idempotency lookup; returns ErrNotFound when
	// no commission exists for the payment yet
	GetByPaymentID(ctx context.Context, paymentID string) (*Commission, error)
	ListByAgent(ctx context.Context, agentID string) ([]*Commission, error)
}
