package testutil

import (
	"context"

	"github.com/temaribet/temaribet/internal/domain/commission"
	ierr "github.com/temaribet/temaribet/internal/errors"
)

// InMemoryCommissionStore implements commission.Repository
type InMemoryCommissionStore struct {
	*InMemoryStore[*commission.Commission]

	// FailCreate makes Create fail, exercising the degraded commission path
	FailCreate bool
}

// NewInMemoryCommissionStore creates a new in-memory commission repository
func NewInMemoryCommissionStore() *InMemoryCommissionStore {
	return &InMemoryCommissionStore{
		InMemoryStore: NewInMemoryStore[*commission.Commission](),
	}
}

// Create stores a new commission
func (m *InMemoryCommissionStore) Create(ctx context.Context, c *commission.Commission) error {
	if m.FailCreate {
		return ierr.NewError("commission write failed").
			WithHint("Simulated commission store failure").
			Mark(ierr.ErrDatabase)
	}
	if c == nil {
		return ierr.NewError("commission cannot be nil").
			WithHint("Commission cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return m.InMemoryStore.Create(ctx, c.ID, c)
}

// GetByPaymentID retrieves the commission recorded for a payment
func (m *InMemoryCommissionStore) GetByPaymentID(ctx context.Context, paymentID string) (*commission.Commission, error) {
	matches, err := m.InMemoryStore.List(ctx, nil,
		func(_ context.Context, c *commission.Commission, _ interface{}) bool {
			return c.PaymentID == paymentID
		}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("commission not found").
			WithHintf("No commission recorded for payment %s", paymentID).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

// ListByAgent lists commissions credited to an agent
func (m *InMemoryCommissionStore) ListByAgent(ctx context.Context, agentID string) ([]*commission.Commission, error) {
	return m.InMemoryStore.List(ctx, nil,
		func(_ context.Context, c *commission.Commission, _ interface{}) bool {
			return c.AgentID == agentID
		},
		func(i, j *commission.Commission) bool {
			return i.CreatedAt.Before(j.CreatedAt)
		})
}
