package dto

import (
	"time"

	"github.com/temaribet/temaribet/internal/domain/deposit"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// RecordDepositRequest creates a pending deposit.
type RecordDepositRequest struct {
	StudentID string `json:"studentId" binding:"required"`
	Amount    int64  `json:"amount" binding:"required"`
	Reason    string `json:"reason,omitempty"`
	Source    string `json:"source,omitempty"`
	// External transaction reference; generated when omitted
	TransactionID string `json:"transactionId,omitempty"`
	// When the money changed hands; defaults to now
	PaymentDate *time.Time     `json:"paymentDate,omitempty"`
	Metadata    types.Metadata `json:"metadata,omitempty"`
}

// Validate validates the request
func (r *RecordDepositRequest) Validate() error {
	if r.Amount <= 0 {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	if r.Source != "" {
		if err := types.PaymentSource(r.Source).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// PaymentSource returns the requested source, defaulting to manual
func (r *RecordDepositRequest) PaymentSource() types.PaymentSource {
	if r.Source == "" {
		return types.PaymentSourceManual
	}
	return types.PaymentSource(r.Source)
}

// EditDepositRequest edits a pending manual deposit. Nil fields are left
// unchanged.
type EditDepositRequest struct {
	Amount      *int64     `json:"amount,omitempty"`
	Reason      *string    `json:"reason,omitempty"`
	PaymentDate *time.Time `json:"paymentDate,omitempty"`
}

// Validate validates the supplied fields
func (r *EditDepositRequest) Validate() error {
	if r.Amount != nil && *r.Amount <= 0 {
		return ierr.NewError("invalid amount").
			WithHint("Amount must be greater than 0").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DepositResponse is the API view of one deposit
type DepositResponse struct {
	*deposit.Deposit
}

// ApproveDepositResult reports the approval outcome. Auto-apply runs
// after approval and degrades on failure instead of rolling it back.
type ApproveDepositResult struct {
	*DepositResponse
	// Months the deposit was applied to, oldest first
	Applied []types.BillingMonth `json:"applied"`
	// Amount left after application, held on the account
	Remainder int64 `json:"remainder"`
	// Why auto-apply stopped early, empty on success
	AutoApplyErr string `json:"auto_apply_error,omitempty"`
}

// NewDepositResponse creates a new deposit response
func NewDepositResponse(d *deposit.Deposit) *DepositResponse {
	return &DepositResponse{Deposit: d}
}
