package deposit

import (
	"time"

	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// Deposit is a lump payment not yet tied to a specific month, held for
// later application against uncovered months.
type Deposit struct {
	// Unique identifier for this deposit
	ID string `db:"id" json:"id"`
	// Student the deposit belongs to
	StudentID string `db:"student_id" json:"student_id"`
	// Deposited amount in whole currency units
	Amount int64 `db:"amount" json:"amount"`
	// Approval state of the deposit
	DepositStatus types.DepositStatus `db:"deposit_status" json:"deposit_status"`
	// Where the money originated
	Source types.PaymentSource `db:"source" json:"source"`
	// Free-text reason recorded by staff or the gateway
	Reason string `db:"reason" json:"reason"`
	// External transaction reference; also the webhook idempotency key
	TransactionID string `db:"transaction_id" json:"transaction_id"`
	// When the money changed hands
	PaymentDate time.Time `db:"payment_date" json:"payment_date"`
	// Additional custom key-value pairs (optional)
	Metadata types.Metadata `db:"metadata" json:"metadata,omitempty"`

	types.BaseModel
}

// Immutable reports whether the deposit may no longer be edited or
// deleted: approved deposits and anything gateway-sourced are locked.
func (d *Deposit) Immutable() bool {
	return d.DepositStatus == types.DepositStatusApproved || d.Source.IsGateway()
}

// Validate validates the deposit
func (d *Deposit) Validate() error {
	if d.StudentID == "" {
		return ierr.NewError("invalid student id").
			WithHint("Student id is required").
			Mark(ierr.ErrValidation)
	}
	if d.Amount <= 0 {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if err := d.DepositStatus.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Status must be pending, approved or rejected").
			Mark(ierr.ErrValidation)
	}
	if err := d.Source.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Source must be manual, stripe or chapa").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TableName returns the table name for deposits
func (d *Deposit) TableName() string {
	return "deposits"
}
