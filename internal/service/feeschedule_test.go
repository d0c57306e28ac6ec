package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/temaribet/temaribet/internal/domain/student"
	"github.com/temaribet/temaribet/internal/testutil"
	"github.com/temaribet/temaribet/internal/types"
)

type FeeScheduleServiceSuite struct {
	testutil.BaseServiceTestSuite
	service FeeScheduleService
}

func TestFeeScheduleService(t *testing.T) {
	suite.Run(t, new(FeeScheduleServiceSuite))
}

func (s *FeeScheduleServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewFeeScheduleService(testServiceParams(&s.BaseServiceTestSuite))
}

func (s *FeeScheduleServiceSuite) profile(fee int64, enrollment time.Time) *student.FeeProfile {
	return &student.FeeProfile{
		StudentID:       "stu_test",
		BaseMonthlyFee:  decimal.NewFromInt(fee),
		Currency:        "ETB",
		EnrollmentStart: enrollment,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
}

func month(s string) types.BillingMonth {
	m, err := types.ParseBillingMonth(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (s *FeeScheduleServiceSuite) TestExpectedAmount() {
	testCases := []struct {
		name       string
		fee        int64
		enrollment time.Time
		month      string
		expected   int64
	}{
		{
			name:       "before_enrollment_owes_nothing",
			fee:        300,
			enrollment: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC),
			month:      "2025-02",
			expected:   0,
		},
		{
			name:       "after_enrollment_owes_full_fee",
			fee:        300,
			enrollment: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			month:      "2025-02",
			expected:   300,
		},
		{
			name: "enrollment_on_first_owes_full_fee",
			fee:  300,
			// Enrolling on the 1st covers every day of the month
			enrollment: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			month:      "2025-01",
			expected:   300,
		},
		{
			name:       "enrollment_mid_month_prorates_by_days",
			fee:        300,
			enrollment: time.Date(2025, 4, 21, 0, 0, 0, 0, time.UTC),
			month:      "2025-04",
			// 10 in-class days of 30: 300 * 10 / 30
			expected: 100,
		},
		{
			name:       "proration_rounds_half_away_from_zero",
			fee:        300,
			enrollment: time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
			month:      "2025-01",
			// 22 of 31 days: 300 * 22 / 31 = 212.90...
			expected: 213,
		},
		{
			name:       "enrollment_on_last_day_owes_one_day",
			fee:        310,
			enrollment: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			month:      "2025-01",
			expected:   10,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			profile := s.profile(tc.fee, tc.enrollment)
			got := s.service.ExpectedAmount(s.GetContext(), profile, month(tc.month))
			s.Equal(tc.expected, got)
		})
	}
}
