package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/temaribet/temaribet/internal/api/dto"
	"github.com/temaribet/temaribet/internal/billing"
	"github.com/temaribet/temaribet/internal/domain/deposit"
	"github.com/temaribet/temaribet/internal/domain/ledger"
	"github.com/temaribet/temaribet/internal/domain/proration"
	"github.com/temaribet/temaribet/internal/domain/subscription"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/idempotency"
	"github.com/temaribet/temaribet/internal/types"
)

// providerTimeout bounds every call into the external billing provider
const providerTimeout = 30 * time.Second

// rewriteTolerance is the amount difference below which a ledger row is
// left untouched during a plan change rewrite
var rewriteTolerance = decimal.NewFromFloat(0.01)

// TransitionService orchestrates plan upgrades, downgrades and
// cancellations across the provider and the local ledger.
type TransitionService interface {
	ChangePlan(ctx context.Context, subscriptionID, newPackageID string, kind types.TransitionKind) (*dto.ChangePlanResponse, error)
	Cancel(ctx context.Context, subscriptionID string) (*dto.SubscriptionResponse, error)
}

type transitionService struct {
	ServiceParams
	idempGen *idempotency.Generator
}

// NewTransitionService creates the subscription transition orchestrator
func NewTransitionService(params ServiceParams) TransitionService {
	return &transitionService{
		ServiceParams: params,
		idempGen:      idempotency.NewGenerator(),
	}
}

func (s *transitionService) ChangePlan(ctx context.Context, subscriptionID, newPackageID string, kind types.TransitionKind) (*dto.ChangePlanResponse, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.SubscriptionRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.SubscriptionStatus.CanTransition() {
		return nil, ierr.NewError("subscription cannot change plans").
			WithHintf("Subscription %s is %s; only trialing or active subscriptions can change plans", subscriptionID, sub.SubscriptionStatus).
			Mark(ierr.ErrInvalidOperation)
	}
	if sub.PackageID == newPackageID {
		return nil, ierr.NewError("already on this package").
			WithHint("The subscription is already on the requested package").
			Mark(ierr.ErrInvalidOperation)
	}

	currentPkg, err := s.SubscriptionRepo.GetPackage(ctx, sub.PackageID)
	if err != nil {
		return nil, err
	}
	newPkg, err := s.SubscriptionRepo.GetPackage(ctx, newPackageID)
	if err != nil {
		return nil, err
	}
	if err := s.validatePackagePair(currentPkg, newPkg, kind); err != nil {
		return nil, err
	}

	transitionDate := time.Now().UTC()

	// Provider phase runs before any local write so a provider failure
	// leaves local state untouched
	providerCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()

	info, err := s.Provider.GetSubscription(providerCtx, sub.ExternalSubscriptionID)
	if err != nil {
		return nil, err
	}

	result, err := s.Calculator.Calculate(proration.Params{
		CurrentPrice:          currentPkg.Price,
		CurrentDurationMonths: currentPkg.DurationMonths,
		NewPrice:              newPkg.Price,
		NewDurationMonths:     newPkg.DurationMonths,
		OriginalStart:         info.CurrentPeriodStart,
		CurrentEnd:            info.CurrentPeriodEnd,
		TransitionDate:        transitionDate,
		Kind:                  kind,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Provider.SwapSubscriptionPrice(providerCtx, info.ID, info.ItemID, newPkg.ExternalPriceID); err != nil {
		return nil, err
	}

	invoice, err := s.invoiceTransition(providerCtx, info, newPkg, kind, result)
	if err != nil {
		return nil, err
	}

	// Local phase: one transaction covering the subscription row, the
	// net payment record and the ledger rewrite
	transitionMonth := types.MonthOf(transitionDate)
	cycleEndMonth := types.MonthOf(info.CurrentPeriodEnd)
	var rewritten []types.BillingMonth

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		sub.PackageID = newPkg.ID
		sub.EndDate = info.CurrentPeriodEnd
		sub.NextBillingDate = info.CurrentPeriodEnd
		sub.UpdatedAt = time.Now().UTC()
		sub.UpdatedBy = types.GetUserID(ctx)
		if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
			return err
		}

		if err := s.recordNetPayment(ctx, sub, invoice, kind, result); err != nil {
			return err
		}

		months, err := s.rewriteLedger(ctx, sub.StudentID, transitionMonth, cycleEndMonth, result.NewMonthlyRate)
		if err != nil {
			return err
		}
		rewritten = months
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("plan change complete",
		"subscription_id", sub.ID,
		"kind", kind,
		"new_package_id", newPkg.ID,
		"net_amount", result.NetAmount,
		"rewritten_months", len(rewritten))

	return &dto.ChangePlanResponse{
		SubscriptionResponse: dto.NewSubscriptionResponse(sub),
		Kind:                 kind,
		CreditAmount:         result.CreditAmount,
		NewPlanCharge:        result.NewPlanCharge,
		NetAmount:            result.NetAmount,
		ChargeNow:            result.ChargeNow,
		NewMonthlyRate:       result.NewMonthlyRate,
		RewrittenMonths:      rewritten,
	}, nil
}

// validatePackagePair checks currency compatibility and that the
// requested direction matches the monthly-rate comparison strictly.
func (s *transitionService) validatePackagePair(current, next *subscription.Package, kind types.TransitionKind) error {
	if !next.Active {
		return ierr.NewError("package is not active").
			WithHintf("Package %s cannot be subscribed to", next.ID).
			Mark(ierr.ErrValidation)
	}
	if current.Currency != next.Currency {
		return ierr.NewError("currency mismatch").
			WithHintf("Cannot move between %s and %s packages", current.Currency, next.Currency).
			Mark(ierr.ErrValidation)
	}

	currentRate := current.MonthlyRate()
	nextRate := next.MonthlyRate()

	switch kind {
	case types.TransitionKindUpgrade:
		if !nextRate.GreaterThan(currentRate) {
			return ierr.NewError("not an upgrade").
				WithHintf("Monthly rate %s does not exceed the current %s", nextRate, currentRate).
				Mark(ierr.ErrValidation)
		}
	case types.TransitionKindDowngrade:
		if !nextRate.LessThan(currentRate) {
			return ierr.NewError("not a downgrade").
				WithHintf("Monthly rate %s is not below the current %s", nextRate, currentRate).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

// invoiceTransition raises the proration invoice at the provider. A
// downgrade carries an explicit credit line plus the full new-plan
// charge; an upgrade invoices the clamped net. Collection is
// best-effort: a finalized invoice left open is not an error.
func (s *transitionService) invoiceTransition(
	ctx context.Context,
	info *billing.SubscriptionInfo,
	newPkg *subscription.Package,
	kind types.TransitionKind,
	result *proration.Result,
) (*billing.Invoice, error) {
	req := &billing.CreateInvoiceRequest{
		CustomerID:  info.CustomerID,
		Currency:    newPkg.Currency,
		Description: "plan change to " + newPkg.Name,
		Metadata: map[string]string{
			"kind":            string(kind),
			"subscription_id": info.ID,
		},
		AutoCollect: true,
	}

	if kind == types.TransitionKindDowngrade {
		req.Lines = []billing.InvoiceLine{
			{
				Description: "unused time credit",
				Amount:      result.CreditAmount.Neg(),
				Currency:    newPkg.Currency,
			},
			{
				Description: newPkg.Name + " plan charge",
				Amount:      result.NewPlanCharge,
				Currency:    newPkg.Currency,
			},
		}
	} else {
		if result.ChargeNow.IsZero() {
			// Credit swallowed the whole charge; nothing to invoice
			return nil, nil
		}
		req.Lines = []billing.InvoiceLine{
			{
				Description: newPkg.Name + " prorated upgrade charge",
				Amount:      result.ChargeNow,
				Currency:    newPkg.Currency,
			},
		}
	}

	return s.Provider.CreateInvoice(ctx, req)
}

// recordNetPayment stores the invoiced net as an approved payment
// record tagged credit or charge.
func (s *transitionService) recordNetPayment(
	ctx context.Context,
	sub *subscription.Subscription,
	invoice *billing.Invoice,
	kind types.TransitionKind,
	result *proration.Result,
) error {
	if result.NetAmount.IsZero() {
		return nil
	}

	tag := "charge"
	amount := result.NetAmount
	if result.NetAmount.IsNegative() {
		tag = "credit"
		amount = result.NetAmount.Neg()
	}

	metadata := types.Metadata{
		"kind":            tag,
		"transition":      string(kind),
		"subscription_id": sub.ID,
	}

	// Without an invoice the transaction id is derived deterministically,
	// so a retried transition in the same cycle collides on the unique
	// (school_id, transaction_id) index instead of double-recording.
	transactionID := s.idempGen.GenerateKey(idempotency.ScopeProrationInvoice, map[string]interface{}{
		"subscription_id": sub.ID,
		"kind":            string(kind),
		"period_end":      sub.EndDate.Unix(),
	})
	if invoice != nil {
		metadata["invoice_id"] = invoice.ID
		transactionID = invoice.ID
	}

	d := &deposit.Deposit{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DEPOSIT),
		StudentID:     sub.StudentID,
		Amount:        amount.Round(0).IntPart(),
		DepositStatus: types.DepositStatusApproved,
		Source:        types.PaymentSourceStripe,
		Reason:        "plan change " + tag,
		TransactionID: transactionID,
		PaymentDate:   time.Now().UTC(),
		Metadata:      metadata,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := d.Validate(); err != nil {
		return err
	}
	return s.DepositRepo.Create(ctx, d)
}

// rewriteLedger aligns ledger rows from the transition month through the
// cycle end with the new monthly rate. Months before the transition are
// never touched; rows within tolerance stay as they are.
func (s *transitionService) rewriteLedger(
	ctx context.Context,
	studentID string,
	from, to types.BillingMonth,
	monthlyRate decimal.Decimal,
) ([]types.BillingMonth, error) {
	rewritten := []types.BillingMonth{}
	target := monthlyRate.Round(0).IntPart()

	for _, m := range types.MonthsBetween(from, to) {
		entries, err := s.LedgerRepo.ListByStudentMonth(ctx, studentID, m)
		if err != nil {
			return nil, err
		}

		if len(entries) == 0 {
			entry := &ledger.Entry{
				ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
				StudentID:     studentID,
				Month:         m,
				PaidAmount:    target,
				PaymentStatus: types.LedgerStatusPending,
				EntryType:     types.LedgerEntryTypeFull,
				CoverageStart: m.FirstDay(),
				CoverageEnd:   m.LastDay(),
				Source:        types.PaymentSourceStripe,
				BaseModel:     types.GetDefaultBaseModel(ctx),
			}
			if err := s.LedgerRepo.Create(ctx, entry); err != nil {
				return nil, err
			}
			rewritten = append(rewritten, m)
			continue
		}

		changed := false
		for _, entry := range entries {
			if entry.IsFree() {
				continue
			}
			diff := decimal.NewFromInt(entry.PaidAmount).Sub(monthlyRate).Abs()
			if diff.LessThanOrEqual(rewriteTolerance) {
				continue
			}
			entry.PaidAmount = target
			entry.UpdatedAt = time.Now().UTC()
			entry.UpdatedBy = types.GetUserID(ctx)
			if err := s.LedgerRepo.Update(ctx, entry); err != nil {
				return nil, err
			}
			changed = true
		}
		if changed {
			rewritten = append(rewritten, m)
		}
	}

	return rewritten, nil
}

func (s *transitionService) Cancel(ctx context.Context, subscriptionID string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubscriptionRepo.Get(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.SubscriptionStatus == types.SubscriptionStatusCancelled {
		return dto.NewSubscriptionResponse(sub), nil
	}

	providerCtx, cancel := context.WithTimeout(ctx, providerTimeout)
	defer cancel()
	if err := s.Provider.CancelSubscription(providerCtx, sub.ExternalSubscriptionID); err != nil {
		return nil, err
	}

	sub.SubscriptionStatus = types.SubscriptionStatusCancelled
	sub.EndDate = time.Now().UTC()
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Infow("subscription cancelled",
		"subscription_id", sub.ID,
		"student_id", sub.StudentID)

	return dto.NewSubscriptionResponse(sub), nil
}
