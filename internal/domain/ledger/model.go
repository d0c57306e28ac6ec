package ledger

import (
	"time"

	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// Entry is one record of money recorded against a specific student-month.
// Multiple entries may exist for the same month, e.g. a prize_partial plus
// the remaining partial.
type Entry struct {
	// Unique identifier for this ledger entry
	ID string `db:"id" json:"id"`
	// Student this entry belongs to
	StudentID string `db:"student_id" json:"student_id"`
	// Calendar month the entry covers, canonical form YYYY-MM
	Month types.BillingMonth `db:"month" json:"month"`
	// Amount recorded, in whole currency units; always 0 for free entries
	PaidAmount int64 `db:"paid_amount" json:"paid_amount"`
	// Approval state of the entry
	PaymentStatus types.LedgerStatus `db:"payment_status" json:"payment_status"`
	// How the entry covers its month
	EntryType types.LedgerEntryType `db:"entry_type" json:"entry_type"`
	// First day covered by this entry
	CoverageStart time.Time `db:"coverage_start" json:"coverage_start"`
	// Last day covered by this entry
	CoverageEnd time.Time `db:"coverage_end" json:"coverage_end"`
	// Why the month was granted for free (free entries only)
	FreeReason *string `db:"free_reason" json:"free_reason,omitempty"`
	// Deposit or external payment this entry was funded by (optional)
	LinkedPaymentID *string `db:"linked_payment_id" json:"linked_payment_id,omitempty"`
	// Where the money originated
	Source types.PaymentSource `db:"source" json:"source"`

	types.BaseModel
}

// Validate validates the ledger entry
func (e *Entry) Validate() error {
	if e.StudentID == "" {
		return ierr.NewError("invalid student id").
			WithHint("Student id is required").
			Mark(ierr.ErrValidation)
	}
	if e.Month.IsZero() {
		return ierr.NewError("invalid month").
			WithHint("Month is required in YYYY-MM form").
			Mark(ierr.ErrValidation)
	}
	if err := e.PaymentStatus.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Payment status must be pending, paid or rejected").
			Mark(ierr.ErrValidation)
	}
	if err := e.EntryType.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Payment type must be full, partial, prize_partial or free").
			Mark(ierr.ErrValidation)
	}
	if err := e.Source.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Payment source must be manual, stripe or chapa").
			Mark(ierr.ErrValidation)
	}
	if e.EntryType == types.LedgerEntryTypeFree {
		if e.PaidAmount != 0 {
			return ierr.NewError("free entry with non-zero amount").
				WithHint("Free months carry a zero amount").
				Mark(ierr.ErrValidation)
		}
	} else if e.PaidAmount < 0 {
		return ierr.NewError("invalid amount").
			WithHint("Amount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CountsTowardCoverage reports whether the entry's amount participates in
// the month's paid total. Rejected entries never do.
func (e *Entry) CountsTowardCoverage() bool {
	return e.PaymentStatus != types.LedgerStatusRejected
}

// IsFree reports whether the entry grants the month for free.
func (e *Entry) IsFree() bool {
	return e.EntryType == types.LedgerEntryTypeFree && e.CountsTowardCoverage()
}

// TableName returns the table name for ledger entries
func (e *Entry) TableName() string {
	return "ledger_entries"
}
