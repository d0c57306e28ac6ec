package ledger

import (
	"context"

	"github.com/temaribet/temaribet/internal/types"
)

// Repository defines the interface for ledger entry persistence.
// All reads honor the transaction carried in the context so guard
// re-checks observe writes made earlier in the same transaction.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	Get(ctx context.Context, id string) (*Entry, error)
	Update(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id string) error
	ListByStudent(ctx context.Context, studentID string) ([]*Entry, error)
	ListByStudentMonth(ctx context.Context, studentID string, month types.BillingMonth) ([]*Entry, error)
	GetByLinkedPaymentID(ctx context.Context, paymentID string) ([]*Entry, error)
	// EarliestMonth returns the zero BillingMonth when the student has no entries
	EarliestMonth(ctx context.Context, studentID string) (types.BillingMonth, error)
}
