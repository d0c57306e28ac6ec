package student

import (
	"time"

	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
	"github.com/shopspring/decimal"
)

// FeeProfile is the billing view of a student record. It is owned by the
// student service and read-only to the ledger engine.
type FeeProfile struct {
	// Unique identifier of the student
	StudentID string `db:"student_id" json:"student_id"`
	// Base tuition owed per full calendar month, in whole currency units
	BaseMonthlyFee decimal.Decimal `db:"base_monthly_fee" json:"base_monthly_fee"`
	// Three-letter currency code; defaults to ETB when unset
	Currency string `db:"currency" json:"currency"`
	// Date the student started classes; the enrollment month is prorated
	EnrollmentStart time.Time `db:"enrollment_start" json:"enrollment_start"`
	// Billing agent credited with a commission on paid entries (optional)
	BillingAgentID *string `db:"billing_agent_id" json:"billing_agent_id,omitempty"`

	types.BaseModel
}

// EffectiveCurrency returns the profile currency, falling back to the
// platform default.
func (p *FeeProfile) EffectiveCurrency() string {
	if p.Currency == "" {
		return types.DefaultCurrency
	}
	return p.Currency
}

// EnrollmentMonth returns the billing month the student enrolled in.
func (p *FeeProfile) EnrollmentMonth() types.BillingMonth {
	return types.MonthOf(p.EnrollmentStart)
}

// Validate validates the fee profile
func (p *FeeProfile) Validate() error {
	if p.StudentID == "" {
		return ierr.NewError("invalid student id").
			WithHint("Student id is required").
			Mark(ierr.ErrValidation)
	}
	if p.BaseMonthlyFee.IsNegative() {
		return ierr.NewError("invalid base monthly fee").
			WithHint("Base monthly fee cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if p.EnrollmentStart.IsZero() {
		return ierr.NewError("invalid enrollment start").
			WithHint("Enrollment start date is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}
