package dto

import (
	"github.com/shopspring/decimal"
	"github.com/temaribet/temaribet/internal/domain/subscription"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// ChangePlanRequest moves a subscription to a new package.
type ChangePlanRequest struct {
	NewPackageID string `json:"newPackageId" binding:"required"`
}

// Validate validates the request
func (r *ChangePlanRequest) Validate() error {
	if r.NewPackageID == "" {
		return ierr.NewError("invalid package id").
			WithHint("New package id is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionResponse is the API view of one subscription
type SubscriptionResponse struct {
	*subscription.Subscription
}

// ChangePlanResponse carries the updated subscription plus the proration
// breakdown that was invoiced.
type ChangePlanResponse struct {
	*SubscriptionResponse
	Kind           types.TransitionKind `json:"kind"`
	CreditAmount   decimal.Decimal      `json:"credit_amount"`
	NewPlanCharge  decimal.Decimal      `json:"new_plan_charge"`
	NetAmount      decimal.Decimal      `json:"net_amount"`
	ChargeNow      decimal.Decimal      `json:"charge_now"`
	NewMonthlyRate decimal.Decimal      `json:"new_monthly_rate"`
	// Months whose ledger rows were rewritten at the new monthly rate
	RewrittenMonths []types.BillingMonth `json:"rewritten_months"`
}

// NewSubscriptionResponse creates a new subscription response
func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	return &SubscriptionResponse{Subscription: sub}
}
