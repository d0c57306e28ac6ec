package commission

import (
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// Commission is a billing agent's cut of one paid ledger entry. At most
// one commission exists per payment, keyed by PaymentID.
type Commission struct {
	// Unique identifier for this commission
	ID string `db:"id" json:"id"`
	// Billing agent receiving the commission
	AgentID string `db:"agent_id" json:"agent_id"`
	// Ledger entry the commission derives from; unique
	PaymentID string `db:"payment_id" json:"payment_id"`
	// Commission amount in whole currency units
	Amount int64 `db:"amount" json:"amount"`
	// Human-readable description
	Reason string `db:"reason" json:"reason"`

	types.BaseModel
}

// Validate validates the commission
func (c *Commission) Validate() error {
	if c.AgentID == "" {
		return ierr.NewError("invalid agent id").
			WithHint("Agent id is required").
			Mark(ierr.ErrValidation)
	}
	if c.PaymentID == "" {
		return ierr.NewError("invalid payment id").
			WithHint("Payment id is required").
			Mark(ierr.ErrValidation)
	}
	if c.Amount < 0 {
		return ierr.NewError("invalid amount").
			WithHint("Amount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TableName returns the table name for commissions
func (c *Commission) TableName() string {
	return "commissions"
}
