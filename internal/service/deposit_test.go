package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/temaribet/temaribet/internal/api/dto"
	"github.com/temaribet/temaribet/internal/domain/ledger"
	"github.com/temaribet/temaribet/internal/domain/student"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/testutil"
	"github.com/temaribet/temaribet/internal/types"
)

type DepositServiceSuite struct {
	testutil.BaseServiceTestSuite
	service DepositService
}

func TestDepositService(t *testing.T) {
	suite.Run(t, new(DepositServiceSuite))
}

func (s *DepositServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDepositService(testServiceParams(&s.BaseServiceTestSuite))

	profile := &student.FeeProfile{
		StudentID:       "stu_test",
		BaseMonthlyFee:  decimal.NewFromInt(300),
		Currency:        "ETB",
		EnrollmentStart: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	err := s.GetStores().StudentRepo.(*testutil.InMemoryStudentStore).AddFeeProfile(s.GetContext(), profile)
	s.NoError(err)
}

func (s *DepositServiceSuite) seedLedgerEntry(m string, amount int64, entryType types.LedgerEntryType) {
	entry := &ledger.Entry{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		StudentID:     "stu_test",
		Month:         month(m),
		PaidAmount:    amount,
		PaymentStatus: types.LedgerStatusPending,
		EntryType:     entryType,
		CoverageStart: month(m).FirstDay(),
		CoverageEnd:   month(m).LastDay(),
		Source:        types.PaymentSourceManual,
		BaseModel:     types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().LedgerRepo.Create(s.GetContext(), entry))
}

func (s *DepositServiceSuite) TestRecordDeposit() {
	resp, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    500,
		Reason:    "advance payment",
	})
	s.NoError(err)
	s.Equal(types.DepositStatusPending, resp.DepositStatus)
	s.Equal(types.PaymentSourceManual, resp.Source)
	s.NotEmpty(resp.TransactionID)
}

func (s *DepositServiceSuite) TestRecordDeposit_UnknownStudent() {
	_, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_missing",
		Amount:    500,
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *DepositServiceSuite) TestApproveDeposit_AutoAppliesOldestFirst() {
	// January is 100 short, February fully open
	s.seedLedgerEntry("2025-01", 200, types.LedgerEntryTypePartial)

	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    250,
	})
	s.NoError(err)

	result, err := s.service.ApproveDeposit(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.DepositStatusApproved, result.DepositStatus)
	s.Empty(result.AutoApplyErr)

	// 100 closes January, the remaining 150 lands on February as a partial
	s.Equal([]types.BillingMonth{month("2025-01"), month("2025-02")}, result.Applied)
	s.Equal(int64(0), result.Remainder)

	jan, err := s.GetStores().LedgerRepo.ListByStudentMonth(s.GetContext(), "stu_test", month("2025-01"))
	s.NoError(err)
	s.Len(jan, 2)

	feb, err := s.GetStores().LedgerRepo.ListByStudentMonth(s.GetContext(), "stu_test", month("2025-02"))
	s.NoError(err)
	s.Len(feb, 1)
	s.Equal(int64(150), feb[0].PaidAmount)
	s.Equal(types.LedgerEntryTypePartial, feb[0].EntryType)
	s.Equal(types.LedgerStatusPaid, feb[0].PaymentStatus)
	s.Equal(created.ID, *feb[0].LinkedPaymentID)
}

func (s *DepositServiceSuite) TestApproveDeposit_SkipsCoveredMonths() {
	s.seedLedgerEntry("2025-01", 300, types.LedgerEntryTypeFull)

	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    300,
	})
	s.NoError(err)

	result, err := s.service.ApproveDeposit(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal([]types.BillingMonth{month("2025-02")}, result.Applied)
	s.Equal(int64(0), result.Remainder)
}

func (s *DepositServiceSuite) TestApproveDeposit_ZeroFeeKeepsRemainder() {
	// A zero-fee student owes nothing in any month, so there is nothing
	// for the deposit to fill; approval must still return promptly with
	// the full remainder
	profile := &student.FeeProfile{
		StudentID:       "stu_zero",
		BaseMonthlyFee:  decimal.Zero,
		Currency:        "ETB",
		EnrollmentStart: time.Now().UTC().AddDate(0, -2, 0),
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().StudentRepo.(*testutil.InMemoryStudentStore).AddFeeProfile(s.GetContext(), profile))

	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_zero",
		Amount:    500,
	})
	s.NoError(err)

	done := make(chan struct{})
	var result *dto.ApproveDepositResult
	var approveErr error
	go func() {
		result, approveErr = s.service.ApproveDeposit(s.GetContext(), created.ID)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.FailNow("ApproveDeposit did not return for a student who owes nothing")
	}

	s.NoError(approveErr)
	s.Equal(types.DepositStatusApproved, result.DepositStatus)
	s.Empty(result.Applied)
	s.Equal(int64(500), result.Remainder)
}

func (s *DepositServiceSuite) TestApproveDeposit_OnlyPending() {
	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    300,
	})
	s.NoError(err)

	_, err = s.service.ApproveDeposit(s.GetContext(), created.ID)
	s.NoError(err)

	_, err = s.service.ApproveDeposit(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DepositServiceSuite) TestRejectDeposit() {
	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    300,
	})
	s.NoError(err)

	rejected, err := s.service.RejectDeposit(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.DepositStatusRejected, rejected.DepositStatus)
}

func (s *DepositServiceSuite) TestRejectDeposit_ApprovedIsImmutable() {
	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    300,
	})
	s.NoError(err)

	_, err = s.service.ApproveDeposit(s.GetContext(), created.ID)
	s.NoError(err)

	_, err = s.service.RejectDeposit(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsImmutable(err))
}

func (s *DepositServiceSuite) TestRejectDeposit_PendingGatewaySource() {
	// Gateway-sourced deposits are locked against edits and deletes, but
	// a pending one can still be turned away
	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    300,
		Source:    string(types.PaymentSourceChapa),
	})
	s.NoError(err)

	rejected, err := s.service.RejectDeposit(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.DepositStatusRejected, rejected.DepositStatus)
}

func (s *DepositServiceSuite) TestEditDeposit_GatewaySourceIsImmutable() {
	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    300,
		Source:    string(types.PaymentSourceChapa),
	})
	s.NoError(err)

	_, err = s.service.EditDeposit(s.GetContext(), created.ID, &dto.EditDepositRequest{
		Amount: lo.ToPtr(int64(450)),
	})
	s.Error(err)
	s.True(ierr.IsImmutable(err))
}

func (s *DepositServiceSuite) TestEditDeposit() {
	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    300,
	})
	s.NoError(err)

	edited, err := s.service.EditDeposit(s.GetContext(), created.ID, &dto.EditDepositRequest{
		Amount: lo.ToPtr(int64(450)),
	})
	s.NoError(err)
	s.Equal(int64(450), edited.Amount)
}

func (s *DepositServiceSuite) TestEditDeposit_BlockedWhenLedgerDrawsOnIt() {
	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    300,
	})
	s.NoError(err)

	entry := &ledger.Entry{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		StudentID:       "stu_test",
		Month:           month("2025-01"),
		PaidAmount:      300,
		PaymentStatus:   types.LedgerStatusPaid,
		EntryType:       types.LedgerEntryTypeFull,
		CoverageStart:   month("2025-01").FirstDay(),
		CoverageEnd:     month("2025-01").LastDay(),
		LinkedPaymentID: &created.ID,
		Source:          types.PaymentSourceManual,
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().LedgerRepo.Create(s.GetContext(), entry))

	_, err = s.service.EditDeposit(s.GetContext(), created.ID, &dto.EditDepositRequest{
		Amount: lo.ToPtr(int64(450)),
	})
	s.Error(err)
	s.True(ierr.IsInUse(err))

	err = s.service.DeleteDeposit(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInUse(err))
}

func (s *DepositServiceSuite) TestDeleteDeposit() {
	created, err := s.service.RecordDeposit(s.GetContext(), &dto.RecordDepositRequest{
		StudentID: "stu_test",
		Amount:    300,
	})
	s.NoError(err)

	s.NoError(s.service.DeleteDeposit(s.GetContext(), created.ID))

	_, err = s.GetStores().DepositRepo.Get(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
}
