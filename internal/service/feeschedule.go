package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/temaribet/temaribet/internal/domain/student"
	"github.com/temaribet/temaribet/internal/types"
)

// FeeScheduleService resolves the expected tuition for a student-month.
type FeeScheduleService interface {
	ExpectedAmount(ctx context.Context, profile *student.FeeProfile, month types.BillingMonth) int64
}

type feeScheduleService struct {
	ServiceParams
}

// NewFeeScheduleService creates the fee schedule resolver
func NewFeeScheduleService(params ServiceParams) FeeScheduleService {
	return &feeScheduleService{ServiceParams: params}
}

// ExpectedAmount returns what the student owes for the month: zero
// before enrollment, prorated by in-class days in the enrollment month,
// the full base fee after. Rounding happens once, half away from zero,
// on the final amount.
func (s *feeScheduleService) ExpectedAmount(ctx context.Context, profile *student.FeeProfile, month types.BillingMonth) int64 {
	enrollmentMonth := profile.EnrollmentMonth()
	if month.Before(enrollmentMonth) {
		return 0
	}

	if month.Equal(enrollmentMonth) {
		daysInMonth := month.DaysInMonth()

		enrollmentDay := profile.EnrollmentStart.Day()
		daysInClass := daysInMonth - enrollmentDay + 1
		if daysInClass > daysInMonth {
			daysInClass = daysInMonth
		}
		if daysInClass < 0 {
			daysInClass = 0
		}

		prorated := profile.BaseMonthlyFee.
			Mul(decimal.NewFromInt(int64(daysInClass))).
			Div(decimal.NewFromInt(int64(daysInMonth)))
		return prorated.Round(0).IntPart()
	}

	return profile.BaseMonthlyFee.Round(0).IntPart()
}
