package testutil

import (
	"context"
	"time"

	"github.com/temaribet/temaribet/internal/domain/deposit"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// InMemoryDepositStore implements deposit.Repository
type InMemoryDepositStore struct {
	*InMemoryStore[*deposit.Deposit]
}

// NewInMemoryDepositStore creates a new in-memory deposit repository
func NewInMemoryDepositStore() *InMemoryDepositStore {
	return &InMemoryDepositStore{
		InMemoryStore: NewInMemoryStore[*deposit.Deposit](),
	}
}

// Create stores a new deposit
func (m *InMemoryDepositStore) Create(ctx context.Context, d *deposit.Deposit) error {
	if d == nil {
		return ierr.NewError("deposit cannot be nil").
			WithHint("Deposit cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return m.InMemoryStore.Create(ctx, d.ID, d)
}

// Get retrieves a deposit by ID
func (m *InMemoryDepositStore) Get(ctx context.Context, id string) (*deposit.Deposit, error) {
	d, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("deposit not found").
			WithHintf("Deposit with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return d, nil
}

// Update updates an existing deposit
func (m *InMemoryDepositStore) Update(ctx context.Context, d *deposit.Deposit) error {
	if d == nil {
		return ierr.NewError("deposit cannot be nil").
			WithHint("Deposit cannot be nil").
			Mark(ierr.ErrValidation)
	}
	d.UpdatedAt = time.Now().UTC()
	if err := m.InMemoryStore.Update(ctx, d.ID, d); err != nil {
		return ierr.NewError("deposit not found").
			WithHintf("Deposit with ID %s was not found", d.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// Delete removes a deposit
func (m *InMemoryDepositStore) Delete(ctx context.Context, id string) error {
	if err := m.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.NewError("deposit not found").
			WithHintf("Deposit with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// ListByStudent lists all deposits for a student ordered by payment date
func (m *InMemoryDepositStore) ListByStudent(ctx context.Context, studentID string) ([]*deposit.Deposit, error) {
	return m.InMemoryStore.List(ctx, nil,
		func(_ context.Context, d *deposit.Deposit, _ interface{}) bool {
			return d.StudentID == studentID
		},
		func(i, j *deposit.Deposit) bool {
			if i.PaymentDate.Equal(j.PaymentDate) {
				return i.CreatedAt.Before(j.CreatedAt)
			}
			return i.PaymentDate.Before(j.PaymentDate)
		})
}

// GetByTransactionID retrieves a deposit by external transaction
// reference within the calling school's scope
func (m *InMemoryDepositStore) GetByTransactionID(ctx context.Context, transactionID string) (*deposit.Deposit, error) {
	matches, err := m.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, d *deposit.Deposit, _ interface{}) bool {
			return d.TransactionID == transactionID && d.SchoolID == types.GetSchoolID(ctx)
		}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("deposit not found").
			WithHintf("No deposit recorded for transaction %s", transactionID).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

// LookupByTransactionID retrieves a deposit by transaction reference
// regardless of school, for signature-authenticated gateway callbacks
func (m *InMemoryDepositStore) LookupByTransactionID(ctx context.Context, transactionID string) (*deposit.Deposit, error) {
	matches, err := m.InMemoryStore.List(ctx, nil,
		func(_ context.Context, d *deposit.Deposit, _ interface{}) bool {
			return d.TransactionID == transactionID
		}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("deposit not found").
			WithHintf("No deposit recorded for transaction %s", transactionID).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}
