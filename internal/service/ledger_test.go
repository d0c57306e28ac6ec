package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/temaribet/temaribet/internal/api/dto"
	"github.com/temaribet/temaribet/internal/domain/student"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/testutil"
	"github.com/temaribet/temaribet/internal/types"
)

type LedgerServiceSuite struct {
	testutil.BaseServiceTestSuite
	service LedgerService
}

func TestLedgerService(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewLedgerService(testServiceParams(&s.BaseServiceTestSuite))
}

// seedStudent registers a fee profile for stu_test: 300/month, enrolled
// on the given date.
func (s *LedgerServiceSuite) seedStudent(enrollment time.Time, agentID *string) {
	profile := &student.FeeProfile{
		StudentID:       "stu_test",
		BaseMonthlyFee:  decimal.NewFromInt(300),
		Currency:        "ETB",
		EnrollmentStart: enrollment,
		BillingAgentID:  agentID,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	err := s.GetStores().StudentRepo.(*testutil.InMemoryStudentStore).AddFeeProfile(s.GetContext(), profile)
	s.NoError(err)
}

func (s *LedgerServiceSuite) record(req *dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error) {
	req.StudentID = "stu_test"
	return s.service.RecordPayment(s.GetContext(), req)
}

func (s *LedgerServiceSuite) TestRecordPayment_FirstEntry() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	resp, err := s.record(&dto.RecordPaymentRequest{
		Month:      "2025-01",
		PaidAmount: 300,
	})
	s.NoError(err)
	s.Equal(int64(300), resp.Entry.PaidAmount)
	s.Equal(types.LedgerStatusPending, resp.Entry.PaymentStatus)
	s.Equal(types.LedgerEntryTypeFull, resp.Entry.EntryType)
	s.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), resp.Entry.CoverageStart)
	s.Equal(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), resp.Entry.CoverageEnd)
}

func (s *LedgerServiceSuite) TestRecordPayment_ClampsCoverageToEnrollmentDate() {
	s.seedStudent(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), nil)

	resp, err := s.record(&dto.RecordPaymentRequest{
		Month:      "2025-01",
		PaidAmount: 213,
	})
	s.NoError(err)
	s.Equal(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), resp.Entry.CoverageStart)
}

func (s *LedgerServiceSuite) TestRecordPayment_BlocksOnUnpaidHistory() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  100,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.NoError(err)

	_, err = s.record(&dto.RecordPaymentRequest{
		Month:      "2025-03",
		PaidAmount: 300,
	})
	s.Error(err)
	s.True(ierr.IsUnpaidHistory(err))
}

func (s *LedgerServiceSuite) TestRecordPayment_PrizePartialBypassesHistory() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  100,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.NoError(err)

	resp, err := s.record(&dto.RecordPaymentRequest{
		Month:       "2025-03",
		PaidAmount:  150,
		PaymentType: string(types.LedgerEntryTypePrizePartial),
	})
	s.NoError(err)
	s.Equal(types.LedgerEntryTypePrizePartial, resp.Entry.EntryType)
}

func (s *LedgerServiceSuite) TestRecordPayment_PaidStatusBypassesHistory() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  100,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.NoError(err)

	// Legacy imports arrive already marked paid and skip the check
	_, err = s.record(&dto.RecordPaymentRequest{
		Month:         "2025-03",
		PaidAmount:    300,
		PaymentStatus: string(types.LedgerStatusPaid),
	})
	s.NoError(err)
}

func (s *LedgerServiceSuite) TestRecordPayment_LegacyPaidThroughAdvancesBaseline() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  100,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.NoError(err)

	// January's shortfall is vouched for outside the ledger
	_, err = s.record(&dto.RecordPaymentRequest{
		Month:             "2025-03",
		PaidAmount:        300,
		LegacyPaidThrough: "2025-02",
	})
	s.NoError(err)
}

func (s *LedgerServiceSuite) TestRecordPayment_IgnoreFlagSkipsHistory() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  100,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.NoError(err)

	_, err = s.record(&dto.RecordPaymentRequest{
		Month:                  "2025-03",
		PaidAmount:             300,
		IgnoreHistoricalUnpaid: true,
	})
	s.NoError(err)
}

func (s *LedgerServiceSuite) TestRecordPayment_NeverExceedsExpected() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  200,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.NoError(err)

	_, err = s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  200,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.Error(err)
	s.True(ierr.IsAmountExceedsExpected(err))

	// Filling the exact remainder is fine
	_, err = s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  100,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.NoError(err)
}

func (s *LedgerServiceSuite) TestRecordPayment_FreeMonthForcesZeroAmount() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	resp, err := s.record(&dto.RecordPaymentRequest{
		Month:           "2025-01",
		PaidAmount:      500,
		PaymentType:     string(types.LedgerEntryTypeFree),
		FreeMonthReason: lo.ToPtr("scholarship"),
	})
	s.NoError(err)
	s.Equal(int64(0), resp.Entry.PaidAmount)
	s.Equal("scholarship", *resp.Entry.FreeReason)
}

func (s *LedgerServiceSuite) TestRecordPayment_RejectsPaymentOnFreeMonth() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := s.record(&dto.RecordPaymentRequest{
		Month:           "2025-02",
		PaymentType:     string(types.LedgerEntryTypeFree),
		FreeMonthReason: lo.ToPtr("prize"),
	})
	s.NoError(err)

	_, err = s.record(&dto.RecordPaymentRequest{
		Month:       "2025-02",
		PaidAmount:  100,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.Error(err)
	s.True(ierr.IsMonthAlreadyFree(err))
}

func (s *LedgerServiceSuite) TestRecordPayment_RecordsCommissionOnPaidEntry() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), lo.ToPtr("agent_1"))

	resp, err := s.record(&dto.RecordPaymentRequest{
		Month:         "2025-01",
		PaidAmount:    300,
		PaymentStatus: string(types.LedgerStatusPaid),
	})
	s.NoError(err)
	s.True(resp.CommissionRecorded)
	s.Empty(resp.CommissionSkipped)

	comm, err := s.GetStores().CommissionRepo.GetByPaymentID(s.GetContext(), resp.Entry.ID)
	s.NoError(err)
	s.Equal(int64(30), comm.Amount)
	s.Equal("agent_1", comm.AgentID)
}

func (s *LedgerServiceSuite) TestRecordPayment_NoCommissionOnPendingEntry() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), lo.ToPtr("agent_1"))

	resp, err := s.record(&dto.RecordPaymentRequest{
		Month:      "2025-01",
		PaidAmount: 300,
	})
	s.NoError(err)
	s.False(resp.CommissionRecorded)

	_, err = s.GetStores().CommissionRepo.GetByPaymentID(s.GetContext(), resp.Entry.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *LedgerServiceSuite) TestRecordPayment_CommissionFailureDoesNotFailPayment() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), lo.ToPtr("agent_1"))
	s.GetStores().CommissionRepo.(*testutil.InMemoryCommissionStore).FailCreate = true

	resp, err := s.record(&dto.RecordPaymentRequest{
		Month:         "2025-01",
		PaidAmount:    300,
		PaymentStatus: string(types.LedgerStatusPaid),
	})
	s.NoError(err)
	s.False(resp.CommissionRecorded)
	s.Equal("commission write failed", resp.CommissionSkipped)

	// The payment itself persisted
	entries, err := s.GetStores().LedgerRepo.ListByStudent(s.GetContext(), "stu_test")
	s.NoError(err)
	s.Len(entries, 1)
}

func (s *LedgerServiceSuite) TestRecordPayment_CommissionSkippedWhenDisabled() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), lo.ToPtr("agent_1"))

	params := testServiceParams(&s.BaseServiceTestSuite)
	cfg := *s.GetConfig()
	cfg.Features.CommissionTracking = false
	params.Config = &cfg
	service := NewLedgerService(params)

	resp, err := service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
		StudentID:     "stu_test",
		Month:         "2025-01",
		PaidAmount:    300,
		PaymentStatus: string(types.LedgerStatusPaid),
	})
	s.NoError(err)
	s.False(resp.CommissionRecorded)
	s.Equal("commission tracking disabled", resp.CommissionSkipped)
}

func (s *LedgerServiceSuite) TestRecordPayment_UnknownStudent() {
	_, err := s.service.RecordPayment(s.GetContext(), &dto.RecordPaymentRequest{
		StudentID:  "stu_missing",
		Month:      "2025-01",
		PaidAmount: 300,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *LedgerServiceSuite) TestUpdatePayment() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	created, err := s.record(&dto.RecordPaymentRequest{
		Month:      "2025-01",
		PaidAmount: 300,
	})
	s.NoError(err)

	updated, err := s.service.UpdatePayment(s.GetContext(), created.Entry.ID, &dto.UpdatePaymentRequest{
		PaymentStatus: lo.ToPtr(string(types.LedgerStatusPaid)),
	})
	s.NoError(err)
	s.Equal(types.LedgerStatusPaid, updated.Entry.PaymentStatus)
}

func (s *LedgerServiceSuite) TestUpdatePayment_NeverExceedsExpected() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	created, err := s.record(&dto.RecordPaymentRequest{
		Month:      "2025-01",
		PaidAmount: 100,
	})
	s.NoError(err)

	// An update cannot push the month past its expected 300 either
	_, err = s.service.UpdatePayment(s.GetContext(), created.Entry.ID, &dto.UpdatePaymentRequest{
		PaidAmount: lo.ToPtr(int64(5000)),
	})
	s.Error(err)
	s.True(ierr.IsAmountExceedsExpected(err))

	updated, err := s.service.UpdatePayment(s.GetContext(), created.Entry.ID, &dto.UpdatePaymentRequest{
		PaidAmount: lo.ToPtr(int64(300)),
	})
	s.NoError(err)
	s.Equal(int64(300), updated.Entry.PaidAmount)
}

func (s *LedgerServiceSuite) TestUpdatePayment_CountsOtherRowsInMonth() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  200,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.NoError(err)

	second, err := s.record(&dto.RecordPaymentRequest{
		Month:       "2025-01",
		PaidAmount:  50,
		PaymentType: string(types.LedgerEntryTypePartial),
	})
	s.NoError(err)

	// 200 + 150 would exceed the expected 300
	_, err = s.service.UpdatePayment(s.GetContext(), second.Entry.ID, &dto.UpdatePaymentRequest{
		PaidAmount: lo.ToPtr(int64(150)),
	})
	s.Error(err)
	s.True(ierr.IsAmountExceedsExpected(err))

	updated, err := s.service.UpdatePayment(s.GetContext(), second.Entry.ID, &dto.UpdatePaymentRequest{
		PaidAmount: lo.ToPtr(int64(100)),
	})
	s.NoError(err)
	s.Equal(int64(100), updated.Entry.PaidAmount)
}

func (s *LedgerServiceSuite) TestUpdatePayment_FreeTypeZeroesAmount() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	created, err := s.record(&dto.RecordPaymentRequest{
		Month:      "2025-01",
		PaidAmount: 300,
	})
	s.NoError(err)

	updated, err := s.service.UpdatePayment(s.GetContext(), created.Entry.ID, &dto.UpdatePaymentRequest{
		PaymentType:     lo.ToPtr(string(types.LedgerEntryTypeFree)),
		FreeMonthReason: lo.ToPtr("hardship"),
	})
	s.NoError(err)
	s.Equal(int64(0), updated.Entry.PaidAmount)
}

func (s *LedgerServiceSuite) TestDeletePayment_ReopensMonth() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	_, err := s.record(&dto.RecordPaymentRequest{
		Month:      "2025-01",
		PaidAmount: 300,
	})
	s.NoError(err)

	feb, err := s.record(&dto.RecordPaymentRequest{
		Month:      "2025-02",
		PaidAmount: 300,
	})
	s.NoError(err)

	s.NoError(s.service.DeletePayment(s.GetContext(), feb.Entry.ID))

	// With February gone, a March payment trips the sequencing check again
	_, err = s.record(&dto.RecordPaymentRequest{
		Month:      "2025-03",
		PaidAmount: 300,
	})
	s.Error(err)
	s.True(ierr.IsUnpaidHistory(err))
}

func (s *LedgerServiceSuite) TestListPayments() {
	s.seedStudent(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	for _, m := range []string{"2025-01", "2025-02"} {
		_, err := s.record(&dto.RecordPaymentRequest{Month: m, PaidAmount: 300})
		s.NoError(err)
	}

	entries, err := s.service.ListPayments(s.GetContext(), "stu_test")
	s.NoError(err)
	s.Len(entries, 2)
	s.Equal("2025-01", entries[0].Entry.Month.String())
	s.Equal("2025-02", entries[1].Entry.Month.String())
}
