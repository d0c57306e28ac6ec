package service

import (
	"context"

	"github.com/temaribet/temaribet/internal/domain/ledger"
	"github.com/temaribet/temaribet/internal/domain/student"
	"github.com/temaribet/temaribet/internal/types"
)

// Coverage is the settled-state summary of one student-month.
type Coverage struct {
	Covered   bool  `json:"covered"`
	Expected  int64 `json:"expected"`
	Paid      int64 `json:"paid"`
	Shortfall int64 `json:"shortfall"`
	// FreeRow marks a month granted for free; such a month accepts no
	// further entries
	FreeRow bool `json:"free_row"`
}

// CoverageService decides whether a student-month is settled.
type CoverageService interface {
	Evaluate(ctx context.Context, profile *student.FeeProfile, month types.BillingMonth, entries []*ledger.Entry) Coverage
}

type coverageService struct {
	ServiceParams
	feeSchedule FeeScheduleService
}

// NewCoverageService creates the month coverage evaluator
func NewCoverageService(params ServiceParams) CoverageService {
	return &coverageService{
		ServiceParams: params,
		feeSchedule:   NewFeeScheduleService(params),
	}
}

// Evaluate computes coverage for one month from its entries. A month is
// covered when any row is paid (a paid row overrides a later fee raise),
// when a free row exists, when a prize_partial row coexists with a
// full or partial row, or when the non-rejected total meets the
// expected amount.
func (s *coverageService) Evaluate(ctx context.Context, profile *student.FeeProfile, month types.BillingMonth, entries []*ledger.Entry) Coverage {
	expected := s.feeSchedule.ExpectedAmount(ctx, profile, month)

	cov := Coverage{Expected: expected}

	var hasPaidRow, hasPrizePartial, hasCompletion bool
	for _, entry := range entries {
		if !entry.CountsTowardCoverage() {
			continue
		}
		cov.Paid += entry.PaidAmount

		if entry.PaymentStatus == types.LedgerStatusPaid {
			hasPaidRow = true
		}
		switch entry.EntryType {
		case types.LedgerEntryTypeFree:
			cov.FreeRow = true
		case types.LedgerEntryTypePrizePartial:
			hasPrizePartial = true
		case types.LedgerEntryTypeFull, types.LedgerEntryTypePartial:
			hasCompletion = true
		}
	}

	cov.Covered = hasPaidRow ||
		cov.FreeRow ||
		(hasPrizePartial && hasCompletion) ||
		cov.Paid >= expected

	if shortfall := expected - cov.Paid; shortfall > 0 && !cov.Covered {
		cov.Shortfall = shortfall
	}

	return cov
}
