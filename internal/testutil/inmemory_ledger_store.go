package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/temaribet/temaribet/internal/domain/ledger"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// InMemoryLedgerStore implements ledger.Repository
type InMemoryLedgerStore struct {
	*InMemoryStore[*ledger.Entry]
}

// NewInMemoryLedgerStore creates a new in-memory ledger entry repository
func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{
		InMemoryStore: NewInMemoryStore[*ledger.Entry](),
	}
}

// Create stores a new ledger entry
func (m *InMemoryLedgerStore) Create(ctx context.Context, entry *ledger.Entry) error {
	if entry == nil {
		return ierr.NewError("entry cannot be nil").
			WithHint("Ledger entry cannot be nil").
			Mark(ierr.ErrValidation)
	}
	return m.InMemoryStore.Create(ctx, entry.ID, entry)
}

// Get retrieves a ledger entry by ID
func (m *InMemoryLedgerStore) Get(ctx context.Context, id string) (*ledger.Entry, error) {
	entry, err := m.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("ledger entry not found").
			WithHintf("Ledger entry with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return entry, nil
}

// Update updates an existing ledger entry
func (m *InMemoryLedgerStore) Update(ctx context.Context, entry *ledger.Entry) error {
	if entry == nil {
		return ierr.NewError("entry cannot be nil").
			WithHint("Ledger entry cannot be nil").
			Mark(ierr.ErrValidation)
	}
	entry.UpdatedAt = time.Now().UTC()
	if err := m.InMemoryStore.Update(ctx, entry.ID, entry); err != nil {
		return ierr.NewError("ledger entry not found").
			WithHintf("Ledger entry with ID %s was not found", entry.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// Delete removes a ledger entry
func (m *InMemoryLedgerStore) Delete(ctx context.Context, id string) error {
	if err := m.InMemoryStore.Delete(ctx, id); err != nil {
		return ierr.NewError("ledger entry not found").
			WithHintf("Ledger entry with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// ListByStudent lists all entries for a student ordered by month
func (m *InMemoryLedgerStore) ListByStudent(ctx context.Context, studentID string) ([]*ledger.Entry, error) {
	return m.InMemoryStore.List(ctx, nil,
		func(_ context.Context, e *ledger.Entry, _ interface{}) bool {
			return e.StudentID == studentID
		},
		sortByMonth)
}

// ListByStudentMonth lists entries for one student-month
func (m *InMemoryLedgerStore) ListByStudentMonth(ctx context.Context, studentID string, month types.BillingMonth) ([]*ledger.Entry, error) {
	return m.InMemoryStore.List(ctx, nil,
		func(_ context.Context, e *ledger.Entry, _ interface{}) bool {
			return e.StudentID == studentID && e.Month.Equal(month)
		},
		func(i, j *ledger.Entry) bool {
			return i.CreatedAt.Before(j.CreatedAt)
		})
}

// GetByLinkedPaymentID lists entries funded by the given payment
func (m *InMemoryLedgerStore) GetByLinkedPaymentID(ctx context.Context, paymentID string) ([]*ledger.Entry, error) {
	return m.InMemoryStore.List(ctx, nil,
		func(_ context.Context, e *ledger.Entry, _ interface{}) bool {
			return e.LinkedPaymentID != nil && *e.LinkedPaymentID == paymentID
		},
		sortByMonth)
}

// EarliestMonth returns the chronologically first recorded month
func (m *InMemoryLedgerStore) EarliestMonth(ctx context.Context, studentID string) (types.BillingMonth, error) {
	entries, err := m.ListByStudent(ctx, studentID)
	if err != nil {
		return types.BillingMonth{}, err
	}
	if len(entries) == 0 {
		return types.BillingMonth{}, nil
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Month.Before(entries[j].Month)
	})
	return entries[0].Month, nil
}

func sortByMonth(i, j *ledger.Entry) bool {
	if i.Month.Equal(j.Month) {
		return i.CreatedAt.Before(j.CreatedAt)
	}
	return i.Month.Before(j.Month)
}
