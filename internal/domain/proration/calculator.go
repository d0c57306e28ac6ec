package proration

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	ierr "github.com/temaribet/temaribet/internal/errors"
)

// Calculator performs proration calculations. It is side-effect free;
// persisting the result is the orchestrator's job.
type Calculator interface {
	Calculate(params Params) (*Result, error)
}

// NewCalculator creates the default day-based proration calculator.
func NewCalculator() Calculator {
	return &dayBasedCalculator{}
}

// dayBasedCalculator implements day-based proration over calendar days.
type dayBasedCalculator struct{}

func (c *dayBasedCalculator) Calculate(params Params) (*Result, error) {
	if err := validateParams(params); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("invalid proration params: %v", err).
			Mark(ierr.ErrValidation)
	}

	totalDays := daysBetween(params.OriginalStart, params.CurrentEnd)
	if totalDays <= 0 {
		return nil, ierr.NewError("invalid billing cycle").
			WithHintf("cycle has zero or negative days (%v to %v)", params.OriginalStart, params.CurrentEnd).
			Mark(ierr.ErrValidation)
	}

	daysUsed := daysBetween(params.OriginalStart, params.TransitionDate)
	if daysUsed < 0 {
		daysUsed = 0
	}

	daysRemaining := daysBetween(params.TransitionDate, params.CurrentEnd)
	if daysRemaining < 0 {
		daysRemaining = 0 // Change happened after cycle end
	}

	oldDailyRate := params.CurrentPrice.Div(decimal.NewFromInt(int64(totalDays)))
	creditAmount := oldDailyRate.Mul(decimal.NewFromInt(int64(daysRemaining))).Round(2)

	avgDays := decimal.NewFromFloat(AverageDaysPerMonth)
	newDailyRate := params.NewPrice.Div(
		decimal.NewFromInt(int64(params.NewDurationMonths)).Mul(avgDays))
	newMonthlyRate := newDailyRate.Mul(avgDays).Round(0)

	newPlanCharge := params.NewPrice
	netAmount := newPlanCharge.Sub(creditAmount)

	// On an upgrade the net is collected immediately; credit can exceed
	// the new price, in which case nothing is charged now.
	chargeNow := netAmount
	if chargeNow.IsNegative() {
		chargeNow = decimal.Zero
	}

	return &Result{
		CreditAmount:   creditAmount,
		NewPlanCharge:  newPlanCharge,
		NetAmount:      netAmount,
		ChargeNow:      chargeNow,
		DaysUsed:       daysUsed,
		DaysRemaining:  daysRemaining,
		OldDailyRate:   oldDailyRate,
		NewDailyRate:   newDailyRate,
		NewMonthlyRate: newMonthlyRate,
	}, nil
}

// daysBetween counts whole calendar days from start to end, normalizing
// both to UTC midnight.
func daysBetween(start, end time.Time) int {
	startDay := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	endDay := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(endDay.Sub(startDay).Hours() / 24)
}

// validateParams checks if essential parameters are provided.
func validateParams(params Params) error {
	if params.OriginalStart.IsZero() || params.CurrentEnd.IsZero() {
		return fmt.Errorf("billing cycle start and end dates are required")
	}
	if params.CurrentEnd.Before(params.OriginalStart) {
		return fmt.Errorf("billing cycle end date cannot be before start date")
	}
	if params.TransitionDate.IsZero() {
		return fmt.Errorf("transition date is required")
	}
	if params.CurrentDurationMonths <= 0 {
		return fmt.Errorf("current plan duration must be positive")
	}
	if params.NewDurationMonths <= 0 {
		return fmt.Errorf("new plan duration must be positive")
	}
	if params.CurrentPrice.IsNegative() || params.NewPrice.IsNegative() {
		return fmt.Errorf("plan prices cannot be negative")
	}
	if params.Kind != "" {
		if err := params.Kind.Validate(); err != nil {
			return err
		}
	}
	return nil
}
