package dto

import (
	"github.com/temaribet/temaribet/internal/domain/ledger"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// RecordPaymentRequest creates one monthly ledger entry.
type RecordPaymentRequest struct {
	StudentID     string `json:"studentId" binding:"required"`
	Month         string `json:"month" binding:"required"`
	PaidAmount    int64  `json:"paidAmount"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentType   string `json:"payment_type"`
	// Why the month is granted for free; required for free entries
	FreeMonthReason *string `json:"free_month_reason,omitempty"`
	Source          string  `json:"source,omitempty"`
	// Deposit or external payment funding this entry
	PaymentID *string `json:"paymentId,omitempty"`
	// Months up to and including this one are assumed settled outside the
	// ledger; sequencing starts after it
	LegacyPaidThrough string `json:"legacyPaidThrough,omitempty"`
	// Skips the sequential-month check entirely
	IgnoreHistoricalUnpaid bool `json:"ignoreHistoricalUnpaid,omitempty"`
}

// Validate normalizes and validates the request fields
func (r *RecordPaymentRequest) Validate() error {
	if _, err := types.ParseBillingMonth(r.Month); err != nil {
		return ierr.WithError(err).
			WithHint("Month must be in YYYY-MM form").
			Mark(ierr.ErrValidation)
	}
	if r.PaymentStatus != "" {
		if err := types.LedgerStatus(r.PaymentStatus).Validate(); err != nil {
			return err
		}
	}
	if r.PaymentType != "" {
		if err := types.LedgerEntryType(r.PaymentType).Validate(); err != nil {
			return err
		}
	}
	if r.Source != "" {
		if err := types.PaymentSource(r.Source).Validate(); err != nil {
			return err
		}
	}
	if r.LegacyPaidThrough != "" {
		if _, err := types.ParseBillingMonth(r.LegacyPaidThrough); err != nil {
			return ierr.WithError(err).
				WithHint("legacyPaidThrough must be in YYYY-MM form").
				Mark(ierr.ErrValidation)
		}
	}
	if r.PaidAmount < 0 {
		return ierr.NewError("invalid amount").
			WithHint("Amount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// BillingMonth returns the parsed target month. Validate must have
// passed.
func (r *RecordPaymentRequest) BillingMonth() types.BillingMonth {
	m, _ := types.ParseBillingMonth(r.Month)
	return m
}

// EntryType returns the requested entry type, defaulting to full
func (r *RecordPaymentRequest) EntryType() types.LedgerEntryType {
	if r.PaymentType == "" {
		return types.LedgerEntryTypeFull
	}
	return types.LedgerEntryType(r.PaymentType)
}

// Status returns the requested status, defaulting to pending
func (r *RecordPaymentRequest) Status() types.LedgerStatus {
	if r.PaymentStatus == "" {
		return types.LedgerStatusPending
	}
	return types.LedgerStatus(r.PaymentStatus)
}

// PaymentSource returns the requested source, defaulting to manual
func (r *RecordPaymentRequest) PaymentSource() types.PaymentSource {
	if r.Source == "" {
		return types.PaymentSourceManual
	}
	return types.PaymentSource(r.Source)
}

// UpdatePaymentRequest edits an existing ledger entry. Nil fields are
// left unchanged.
type UpdatePaymentRequest struct {
	PaidAmount      *int64  `json:"paidAmount,omitempty"`
	PaymentStatus   *string `json:"paymentStatus,omitempty"`
	PaymentType     *string `json:"payment_type,omitempty"`
	FreeMonthReason *string `json:"free_month_reason,omitempty"`
}

// Validate validates the supplied fields
func (r *UpdatePaymentRequest) Validate() error {
	if r.PaidAmount != nil && *r.PaidAmount < 0 {
		return ierr.NewError("invalid amount").
			WithHint("Amount cannot be negative").
			Mark(ierr.ErrValidation)
	}
	if r.PaymentStatus != nil {
		if err := types.LedgerStatus(*r.PaymentStatus).Validate(); err != nil {
			return err
		}
	}
	if r.PaymentType != nil {
		if err := types.LedgerEntryType(*r.PaymentType).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LedgerEntryResponse is the API view of one ledger entry
type LedgerEntryResponse struct {
	*ledger.Entry
}

// RecordPaymentResponse carries the created entry plus the commission
// outcome. Commission failures degrade, they never fail the payment.
type RecordPaymentResponse struct {
	*LedgerEntryResponse
	CommissionRecorded bool   `json:"commission_recorded"`
	CommissionSkipped  string `json:"commission_skipped,omitempty"`
}

// NewLedgerEntryResponse creates a new ledger entry response
func NewLedgerEntryResponse(entry *ledger.Entry) *LedgerEntryResponse {
	return &LedgerEntryResponse{Entry: entry}
}
