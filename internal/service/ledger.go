package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/temaribet/temaribet/internal/api/dto"
	"github.com/temaribet/temaribet/internal/domain/commission"
	"github.com/temaribet/temaribet/internal/domain/ledger"
	"github.com/temaribet/temaribet/internal/domain/student"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// LedgerService is the single write path for monthly tuition entries.
type LedgerService interface {
	RecordPayment(ctx context.Context, req *dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error)
	UpdatePayment(ctx context.Context, id string, req *dto.UpdatePaymentRequest) (*dto.LedgerEntryResponse, error)
	DeletePayment(ctx context.Context, id string) error
	ListPayments(ctx context.Context, studentID string) ([]*dto.LedgerEntryResponse, error)
}

type ledgerService struct {
	ServiceParams
	feeSchedule FeeScheduleService
	coverage    CoverageService
}

// NewLedgerService creates the ledger writer
func NewLedgerService(params ServiceParams) LedgerService {
	return &ledgerService{
		ServiceParams: params,
		feeSchedule:   NewFeeScheduleService(params),
		coverage:      NewCoverageService(params),
	}
}

func (s *ledgerService) RecordPayment(ctx context.Context, req *dto.RecordPaymentRequest) (*dto.RecordPaymentResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	month := req.BillingMonth()
	entryType := req.EntryType()
	status := req.Status()

	profile, err := s.StudentRepo.GetFeeProfile(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	if err := s.checkSequencing(ctx, req, profile, month, entryType, status); err != nil {
		return nil, err
	}

	amount := req.PaidAmount
	if entryType == types.LedgerEntryTypeFree {
		// Free months never carry money
		amount = 0
	}

	response := &dto.RecordPaymentResponse{}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// Re-read inside the transaction so concurrent writers cannot
		// both pass the guard
		monthEntries, err := s.LedgerRepo.ListByStudentMonth(ctx, req.StudentID, month)
		if err != nil {
			return err
		}

		for _, existing := range monthEntries {
			if existing.IsFree() {
				return ierr.NewError("month already granted for free").
					WithHintf("Month %s is covered by a free entry and accepts no payments", month).
					WithReportableDetails(map[string]interface{}{
						"student_id": req.StudentID,
						"month":      month.String(),
					}).
					Mark(ierr.ErrMonthAlreadyFree)
			}
		}

		expected := s.feeSchedule.ExpectedAmount(ctx, profile, month)

		if entryType != types.LedgerEntryTypeFree {
			var existingTotal int64
			for _, existing := range monthEntries {
				if existing.CountsTowardCoverage() {
					existingTotal += existing.PaidAmount
				}
			}
			if existingTotal+amount > expected {
				return ierr.NewError("amount exceeds expected month total").
					WithHintf("Recording %d would exceed the expected %d for %s", amount, expected, month).
					WithReportableDetails(map[string]interface{}{
						"student_id": req.StudentID,
						"month":      month.String(),
						"expected":   expected,
						"requested":  amount,
						"existing":   existingTotal,
					}).
					Mark(ierr.ErrAmountExceedsExpected)
			}
		}

		entry := &ledger.Entry{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
			StudentID:       req.StudentID,
			Month:           month,
			PaidAmount:      amount,
			PaymentStatus:   status,
			EntryType:       entryType,
			CoverageStart:   coverageStart(profile, month),
			CoverageEnd:     month.LastDay(),
			FreeReason:      req.FreeMonthReason,
			LinkedPaymentID: req.PaymentID,
			Source:          req.PaymentSource(),
			BaseModel:       types.GetDefaultBaseModel(ctx),
		}
		if err := entry.Validate(); err != nil {
			return err
		}
		if err := s.LedgerRepo.Create(ctx, entry); err != nil {
			return err
		}

		response.LedgerEntryResponse = dto.NewLedgerEntryResponse(entry)

		recorded, skipped := s.recordCommission(ctx, profile, entry)
		response.CommissionRecorded = recorded
		response.CommissionSkipped = skipped
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("recorded monthly payment",
		"entry_id", response.Entry.ID,
		"student_id", req.StudentID,
		"month", month,
		"amount", amount,
		"status", status)

	return response, nil
}

// checkSequencing enforces the sequential-unpaid-month rule: every month
// from the baseline up to the target must be covered. Prize, free and
// partial target types bypass it, as do legacy imports forced to paid
// and callers holding the ignore flag.
func (s *ledgerService) checkSequencing(
	ctx context.Context,
	req *dto.RecordPaymentRequest,
	profile *student.FeeProfile,
	month types.BillingMonth,
	entryType types.LedgerEntryType,
	status types.LedgerStatus,
) error {
	if entryType.BypassesSequencing() || req.IgnoreHistoricalUnpaid || status == types.LedgerStatusPaid {
		return nil
	}

	baseline, err := s.LedgerRepo.EarliestMonth(ctx, req.StudentID)
	if err != nil {
		return err
	}
	if baseline.IsZero() {
		// Nothing recorded yet, no history to settle
		return nil
	}

	if req.LegacyPaidThrough != "" {
		cutoff, _ := types.ParseBillingMonth(req.LegacyPaidThrough)
		if next := cutoff.Next(); next.After(baseline) {
			baseline = next
		}
	}

	for m := baseline; m.Before(month); m = m.Next() {
		entries, err := s.LedgerRepo.ListByStudentMonth(ctx, req.StudentID, m)
		if err != nil {
			return err
		}
		cov := s.coverage.Evaluate(ctx, profile, m, entries)
		if !cov.Covered {
			return ierr.NewError("earlier months are not fully paid").
				WithHintf("Month %s is short by %d; settle it before recording %s", m, cov.Shortfall, month).
				WithReportableDetails(map[string]interface{}{
					"student_id":    req.StudentID,
					"unpaid_month":  m.String(),
					"shortfall":     cov.Shortfall,
					"expected":      cov.Expected,
					"paid":          cov.Paid,
					"blocked_month": month.String(),
				}).
				Mark(ierr.ErrUnpaidHistory)
		}
	}
	return nil
}

// recordCommission writes the billing agent's 10% cut exactly once per
// paid entry. Failures degrade: the payment stands and the outcome is
// surfaced on the response.
func (s *ledgerService) recordCommission(ctx context.Context, profile *student.FeeProfile, entry *ledger.Entry) (bool, string) {
	if entry.PaymentStatus != types.LedgerStatusPaid || profile.BillingAgentID == nil {
		return false, ""
	}
	if !s.Config.Features.CommissionTracking {
		s.Logger.Debugw("commission tracking disabled, skipping",
			"entry_id", entry.ID,
			"agent_id", *profile.BillingAgentID)
		return false, "commission tracking disabled"
	}

	if _, err := s.CommissionRepo.GetByPaymentID(ctx, entry.ID); err == nil {
		// Already recorded for this payment
		return true, ""
	} else if !ierr.IsNotFound(err) {
		s.Logger.Errorw("commission lookup failed",
			"error", err,
			"entry_id", entry.ID)
		return false, "commission lookup failed"
	}

	amount := decimal.NewFromInt(entry.PaidAmount).
		Mul(decimal.NewFromFloat(types.CommissionRate)).
		Round(0).IntPart()

	comm := &commission.Commission{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_COMMISSION),
		AgentID:   *profile.BillingAgentID,
		PaymentID: entry.ID,
		Amount:    amount,
		Reason:    "tuition commission for " + entry.Month.String(),
		BaseModel: types.GetDefaultBaseModel(ctx),
	}
	if err := s.CommissionRepo.Create(ctx, comm); err != nil {
		s.Logger.Errorw("commission write failed, payment stands",
			"error", err,
			"entry_id", entry.ID,
			"agent_id", comm.AgentID)
		return false, "commission write failed"
	}

	return true, ""
}

func (s *ledgerService) UpdatePayment(ctx context.Context, id string, req *dto.UpdatePaymentRequest) (*dto.LedgerEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.LedgerRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PaidAmount != nil {
		entry.PaidAmount = *req.PaidAmount
	}
	if req.PaymentStatus != nil {
		entry.PaymentStatus = types.LedgerStatus(*req.PaymentStatus)
	}
	if req.PaymentType != nil {
		entry.EntryType = types.LedgerEntryType(*req.PaymentType)
	}
	if req.FreeMonthReason != nil {
		entry.FreeReason = req.FreeMonthReason
	}
	if entry.EntryType == types.LedgerEntryTypeFree {
		entry.PaidAmount = 0
	}
	entry.UpdatedAt = time.Now().UTC()
	entry.UpdatedBy = types.GetUserID(ctx)

	if err := entry.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		// The never-exceed guard holds through updates too: re-read the
		// month's other rows inside the transaction before writing
		if entry.EntryType != types.LedgerEntryTypeFree && entry.CountsTowardCoverage() {
			profile, err := s.StudentRepo.GetFeeProfile(ctx, entry.StudentID)
			if err != nil {
				return err
			}
			monthEntries, err := s.LedgerRepo.ListByStudentMonth(ctx, entry.StudentID, entry.Month)
			if err != nil {
				return err
			}

			var otherTotal int64
			for _, existing := range monthEntries {
				if existing.ID == entry.ID || !existing.CountsTowardCoverage() {
					continue
				}
				otherTotal += existing.PaidAmount
			}

			expected := s.feeSchedule.ExpectedAmount(ctx, profile, entry.Month)
			if otherTotal+entry.PaidAmount > expected {
				return ierr.NewError("amount exceeds expected month total").
					WithHintf("Updating to %d would exceed the expected %d for %s", entry.PaidAmount, expected, entry.Month).
					WithReportableDetails(map[string]interface{}{
						"student_id": entry.StudentID,
						"month":      entry.Month.String(),
						"expected":   expected,
						"requested":  entry.PaidAmount,
						"existing":   otherTotal,
					}).
					Mark(ierr.ErrAmountExceedsExpected)
			}
		}
		return s.LedgerRepo.Update(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	return dto.NewLedgerEntryResponse(entry), nil
}

func (s *ledgerService) DeletePayment(ctx context.Context, id string) error {
	// Deleting a paid row re-opens its month for the sequencing check;
	// deletion stays unconditional
	if _, err := s.LedgerRepo.Get(ctx, id); err != nil {
		return err
	}
	return s.LedgerRepo.Delete(ctx, id)
}

func (s *ledgerService) ListPayments(ctx context.Context, studentID string) ([]*dto.LedgerEntryResponse, error) {
	entries, err := s.LedgerRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewLedgerEntryResponse(entry))
	}
	return responses, nil
}

// coverageStart clamps the covered window to the enrollment date in the
// enrollment month.
func coverageStart(profile *student.FeeProfile, month types.BillingMonth) time.Time {
	first := month.FirstDay()
	if month.Equal(profile.EnrollmentMonth()) && profile.EnrollmentStart.After(first) {
		return profile.EnrollmentStart
	}
	return first
}
