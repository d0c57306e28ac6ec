package service

import (
	"context"
	"time"

	"github.com/temaribet/temaribet/internal/api/dto"
	"github.com/temaribet/temaribet/internal/domain/deposit"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// DepositService manages lump payments held for later application.
type DepositService interface {
	RecordDeposit(ctx context.Context, req *dto.RecordDepositRequest) (*dto.DepositResponse, error)
	ApproveDeposit(ctx context.Context, id string) (*dto.ApproveDepositResult, error)
	RejectDeposit(ctx context.Context, id string) (*dto.DepositResponse, error)
	EditDeposit(ctx context.Context, id string, req *dto.EditDepositRequest) (*dto.DepositResponse, error)
	DeleteDeposit(ctx context.Context, id string) error
	ListDeposits(ctx context.Context, studentID string) ([]*dto.DepositResponse, error)
}

type depositService struct {
	ServiceParams
	feeSchedule FeeScheduleService
	coverage    CoverageService
	ledger      LedgerService
}

// NewDepositService creates the deposit account service
func NewDepositService(params ServiceParams) DepositService {
	return &depositService{
		ServiceParams: params,
		feeSchedule:   NewFeeScheduleService(params),
		coverage:      NewCoverageService(params),
		ledger:        NewLedgerService(params),
	}
}

func (s *depositService) RecordDeposit(ctx context.Context, req *dto.RecordDepositRequest) (*dto.DepositResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// The student must exist before money is held against them
	if _, err := s.StudentRepo.GetFeeProfile(ctx, req.StudentID); err != nil {
		return nil, err
	}

	transactionID := req.TransactionID
	if transactionID == "" {
		transactionID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_TRANSACTION)
	}

	paymentDate := time.Now().UTC()
	if req.PaymentDate != nil {
		paymentDate = req.PaymentDate.UTC()
	}

	d := &deposit.Deposit{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DEPOSIT),
		StudentID:     req.StudentID,
		Amount:        req.Amount,
		DepositStatus: types.DepositStatusPending,
		Source:        req.PaymentSource(),
		Reason:        req.Reason,
		TransactionID: transactionID,
		PaymentDate:   paymentDate,
		Metadata:      req.Metadata,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.DepositRepo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded deposit",
		"deposit_id", d.ID,
		"student_id", d.StudentID,
		"amount", d.Amount,
		"source", d.Source)

	return dto.NewDepositResponse(d), nil
}

func (s *depositService) ApproveDeposit(ctx context.Context, id string) (*dto.ApproveDepositResult, error) {
	d, err := s.DepositRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.DepositStatus != types.DepositStatusPending {
		return nil, ierr.NewError("deposit is not pending").
			WithHintf("Deposit %s is already %s", id, d.DepositStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	d.DepositStatus = types.DepositStatusApproved
	d.UpdatedAt = time.Now().UTC()
	d.UpdatedBy = types.GetUserID(ctx)
	if err := s.DepositRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	result := &dto.ApproveDepositResult{
		DepositResponse: dto.NewDepositResponse(d),
		Applied:         []types.BillingMonth{},
		Remainder:       d.Amount,
	}

	// Auto-apply runs after the approval is durable; its failure
	// degrades the result instead of rolling the approval back
	applied, remainder, applyErr := s.autoApply(ctx, d)
	result.Applied = applied
	result.Remainder = remainder
	if applyErr != nil {
		s.Logger.Errorw("deposit auto-apply stopped early",
			"error", applyErr,
			"deposit_id", d.ID,
			"applied_months", len(applied),
			"remainder", remainder)
		result.AutoApplyErr = applyErr.Error()
	}

	return result, nil
}

// autoApply spends the deposit against uncovered months oldest first,
// filling each up to its expected amount until the money runs out.
func (s *depositService) autoApply(ctx context.Context, d *deposit.Deposit) ([]types.BillingMonth, int64, error) {
	applied := []types.BillingMonth{}
	remainder := d.Amount

	profile, err := s.StudentRepo.GetFeeProfile(ctx, d.StudentID)
	if err != nil {
		return applied, remainder, err
	}

	start, err := s.LedgerRepo.EarliestMonth(ctx, d.StudentID)
	if err != nil {
		return applied, remainder, err
	}
	if start.IsZero() {
		start = profile.EnrollmentMonth()
	}

	current := types.MonthOf(time.Now().UTC())

	for m := start; remainder > 0; m = m.Next() {
		entries, err := s.LedgerRepo.ListByStudentMonth(ctx, d.StudentID, m)
		if err != nil {
			return applied, remainder, err
		}
		cov := s.coverage.Evaluate(ctx, profile, m, entries)
		if cov.Covered || cov.Shortfall <= 0 {
			// Nothing owed for this month. Once past the present month
			// with no rows on record there is nothing left to fill at
			// all (a zero-fee profile owes nothing forever), so stop
			// instead of walking into an unbounded future.
			if len(entries) == 0 && !m.Before(current) {
				break
			}
			continue
		}

		amount := remainder
		entryType := types.LedgerEntryTypeFull
		if amount < cov.Shortfall {
			entryType = types.LedgerEntryTypePartial
		} else {
			amount = cov.Shortfall
		}

		_, err = s.ledger.RecordPayment(ctx, &dto.RecordPaymentRequest{
			StudentID:     d.StudentID,
			Month:         m.String(),
			PaidAmount:    amount,
			PaymentStatus: string(types.LedgerStatusPaid),
			PaymentType:   string(entryType),
			Source:        string(d.Source),
			PaymentID:     &d.ID,
		})
		if err != nil {
			return applied, remainder, err
		}

		applied = append(applied, m)
		remainder -= amount
	}

	return applied, remainder, nil
}

func (s *depositService) RejectDeposit(ctx context.Context, id string) (*dto.DepositResponse, error) {
	d, err := s.DepositRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Rejection is a plain status transition; only approval locks it.
	// Gateway-sourced deposits stay rejectable while pending.
	if d.DepositStatus == types.DepositStatusApproved {
		return nil, ierr.NewError("deposit can no longer be modified").
			WithHintf("Deposit %s is approved and is locked", id).
			Mark(ierr.ErrImmutable)
	}

	d.DepositStatus = types.DepositStatusRejected
	d.UpdatedAt = time.Now().UTC()
	d.UpdatedBy = types.GetUserID(ctx)
	if err := s.DepositRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	return dto.NewDepositResponse(d), nil
}

func (s *depositService) EditDeposit(ctx context.Context, id string, req *dto.EditDepositRequest) (*dto.DepositResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	d, err := s.DepositRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMutable(ctx, d); err != nil {
		return nil, err
	}

	if req.Amount != nil {
		d.Amount = *req.Amount
	}
	if req.Reason != nil {
		d.Reason = *req.Reason
	}
	if req.PaymentDate != nil {
		d.PaymentDate = req.PaymentDate.UTC()
	}
	d.UpdatedAt = time.Now().UTC()
	d.UpdatedBy = types.GetUserID(ctx)

	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.DepositRepo.Update(ctx, d); err != nil {
		return nil, err
	}

	return dto.NewDepositResponse(d), nil
}

func (s *depositService) DeleteDeposit(ctx context.Context, id string) error {
	d, err := s.DepositRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireMutable(ctx, d); err != nil {
		return err
	}
	return s.DepositRepo.Delete(ctx, id)
}

func (s *depositService) ListDeposits(ctx context.Context, studentID string) ([]*dto.DepositResponse, error) {
	deposits, err := s.DepositRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.DepositResponse, 0, len(deposits))
	for _, d := range deposits {
		responses = append(responses, dto.NewDepositResponse(d))
	}
	return responses, nil
}

// requireMutable rejects edits to locked deposits and to deposits a
// ledger entry already draws on.
func (s *depositService) requireMutable(ctx context.Context, d *deposit.Deposit) error {
	if d.Immutable() {
		return ierr.NewError("deposit can no longer be modified").
			WithHintf("Deposit %s is approved or gateway-sourced and is locked", d.ID).
			Mark(ierr.ErrImmutable)
	}

	linked, err := s.LedgerRepo.GetByLinkedPaymentID(ctx, d.ID)
	if err != nil {
		return err
	}
	if len(linked) > 0 {
		return ierr.NewError("deposit is referenced by ledger entries").
			WithHintf("Deposit %s funds %d ledger entries and cannot be changed", d.ID, len(linked)).
			WithReportableDetails(map[string]interface{}{
				"deposit_id":   d.ID,
				"linked_count": len(linked),
			}).
			Mark(ierr.ErrInUse)
	}
	return nil
}
