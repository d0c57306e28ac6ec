package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/temaribet/temaribet/internal/domain/ledger"
	"github.com/temaribet/temaribet/internal/domain/student"
	"github.com/temaribet/temaribet/internal/testutil"
	"github.com/temaribet/temaribet/internal/types"
)

type CoverageServiceSuite struct {
	testutil.BaseServiceTestSuite
	service CoverageService
	profile *student.FeeProfile
}

func TestCoverageService(t *testing.T) {
	suite.Run(t, new(CoverageServiceSuite))
}

func (s *CoverageServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewCoverageService(testServiceParams(&s.BaseServiceTestSuite))
	s.profile = &student.FeeProfile{
		StudentID:       "stu_test",
		BaseMonthlyFee:  decimal.NewFromInt(300),
		Currency:        "ETB",
		EnrollmentStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
}

func (s *CoverageServiceSuite) entry(amount int64, status types.LedgerStatus, entryType types.LedgerEntryType) *ledger.Entry {
	return &ledger.Entry{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		StudentID:     s.profile.StudentID,
		Month:         month("2025-02"),
		PaidAmount:    amount,
		PaymentStatus: status,
		EntryType:     entryType,
		Source:        types.PaymentSourceManual,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
}

func (s *CoverageServiceSuite) TestEvaluate() {
	testCases := []struct {
		name          string
		entries       []*ledger.Entry
		wantCovered   bool
		wantShortfall int64
	}{
		{
			name:          "no_entries_is_uncovered",
			entries:       nil,
			wantCovered:   false,
			wantShortfall: 300,
		},
		{
			name: "full_amount_covers",
			entries: []*ledger.Entry{
				s.entry(300, types.LedgerStatusPending, types.LedgerEntryTypeFull),
			},
			wantCovered: true,
		},
		{
			name: "partial_amount_leaves_shortfall",
			entries: []*ledger.Entry{
				s.entry(100, types.LedgerStatusPending, types.LedgerEntryTypePartial),
			},
			wantCovered:   false,
			wantShortfall: 200,
		},
		{
			name: "paid_row_covers_despite_shortfall",
			// A row marked paid settles the month even below the current
			// expected amount, so a later fee raise cannot reopen it
			entries: []*ledger.Entry{
				s.entry(200, types.LedgerStatusPaid, types.LedgerEntryTypeFull),
			},
			wantCovered: true,
		},
		{
			name: "free_row_covers",
			entries: []*ledger.Entry{
				s.entry(0, types.LedgerStatusPending, types.LedgerEntryTypeFree),
			},
			wantCovered: true,
		},
		{
			name: "prize_alone_does_not_cover",
			entries: []*ledger.Entry{
				s.entry(150, types.LedgerStatusPending, types.LedgerEntryTypePrizePartial),
			},
			wantCovered:   false,
			wantShortfall: 150,
		},
		{
			name: "prize_plus_partial_covers",
			entries: []*ledger.Entry{
				s.entry(150, types.LedgerStatusPending, types.LedgerEntryTypePrizePartial),
				s.entry(100, types.LedgerStatusPending, types.LedgerEntryTypePartial),
			},
			wantCovered: true,
		},
		{
			name: "rejected_rows_do_not_count",
			entries: []*ledger.Entry{
				s.entry(300, types.LedgerStatusRejected, types.LedgerEntryTypeFull),
			},
			wantCovered:   false,
			wantShortfall: 300,
		},
		{
			name: "two_partials_sum_to_expected",
			entries: []*ledger.Entry{
				s.entry(180, types.LedgerStatusPending, types.LedgerEntryTypePartial),
				s.entry(120, types.LedgerStatusPending, types.LedgerEntryTypePartial),
			},
			wantCovered: true,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			cov := s.service.Evaluate(s.GetContext(), s.profile, month("2025-02"), tc.entries)
			s.Equal(tc.wantCovered, cov.Covered)
			s.Equal(tc.wantShortfall, cov.Shortfall)
		})
	}
}
