package service

import (
	"context"
	"encoding/json"
	"time"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/temaribet/temaribet/internal/api/dto"
	"github.com/temaribet/temaribet/internal/billing/chapa"
	stripeclient "github.com/temaribet/temaribet/internal/billing/stripe"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
)

// WebhookService verifies and applies provider callbacks. Every payload
// is signature-checked before any state changes; processing is
// idempotent so gateway retries are harmless.
type WebhookService interface {
	ProcessStripeEvent(ctx context.Context, payload []byte, signature string) error
	ProcessChapaEvent(ctx context.Context, payload []byte, signature string) error
}

type webhookService struct {
	ServiceParams
	stripeClient *stripeclient.Client
	chapaClient  *chapa.Client
	deposits     DepositService
}

// NewWebhookService creates the webhook processor
func NewWebhookService(params ServiceParams, stripeClient *stripeclient.Client, chapaClient *chapa.Client) WebhookService {
	return &webhookService{
		ServiceParams: params,
		stripeClient:  stripeClient,
		chapaClient:   chapaClient,
		deposits:      NewDepositService(params),
	}
}

func (s *webhookService) ProcessStripeEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := s.stripeClient.ParseWebhookEvent(payload, signature)
	if err != nil {
		return err
	}

	s.Logger.Infow("processing Stripe webhook event",
		"event_id", event.ID,
		"event_type", event.Type)

	switch string(event.Type) {
	case string(types.WebhookEventTypeInvoicePaymentSucceeded):
		return s.handleInvoicePaymentSucceeded(ctx, event)
	case string(types.WebhookEventTypeSubscriptionDeleted):
		return s.handleSubscriptionDeleted(ctx, event)
	case string(types.WebhookEventTypeCheckoutSessionComplete):
		return s.handleCheckoutSessionCompleted(ctx, event)
	default:
		s.Logger.Infow("unhandled Stripe webhook event type", "type", event.Type)
		return nil
	}
}

// handleInvoicePaymentSucceeded marks the ledger months covered by a
// settled subscription invoice as paid. Re-delivery is a no-op: rows
// already linked to the invoice are never written twice.
func (s *webhookService) handleInvoicePaymentSucceeded(ctx context.Context, event *stripeapi.Event) error {
	var invoice stripeapi.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid invoice data in webhook").
			Mark(ierr.ErrValidation)
	}

	externalSubID := ""
	if invoice.Parent != nil && invoice.Parent.SubscriptionDetails != nil && invoice.Parent.SubscriptionDetails.Subscription != nil {
		externalSubID = invoice.Parent.SubscriptionDetails.Subscription.ID
	}
	if externalSubID == "" {
		s.Logger.Infow("invoice not tied to a subscription, ignoring",
			"invoice_id", invoice.ID,
			"event_id", event.ID)
		return nil
	}

	ctx = schoolContextFromMetadata(ctx, invoice.Metadata)

	linked, err := s.LedgerRepo.GetByLinkedPaymentID(ctx, invoice.ID)
	if err != nil {
		return err
	}
	if len(linked) > 0 {
		s.Logger.Infow("invoice already applied to ledger, skipping",
			"invoice_id", invoice.ID,
			"linked_entries", len(linked))
		return nil
	}

	sub, err := s.SubscriptionRepo.GetByExternalID(ctx, externalSubID)
	if err != nil {
		return err
	}

	from := types.MonthOf(time.Unix(invoice.PeriodStart, 0).UTC())
	to := types.MonthOf(time.Unix(invoice.PeriodEnd, 0).UTC())
	if invoice.PeriodStart == 0 || invoice.PeriodEnd == 0 {
		from = types.MonthOf(sub.StartDate)
		to = types.MonthOf(sub.EndDate)
	}

	invoiceID := invoice.ID
	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		for _, m := range types.MonthsBetween(from, to) {
			entries, err := s.LedgerRepo.ListByStudentMonth(ctx, sub.StudentID, m)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if entry.PaymentStatus != types.LedgerStatusPending || entry.Source != types.PaymentSourceStripe {
					continue
				}
				entry.PaymentStatus = types.LedgerStatusPaid
				entry.LinkedPaymentID = &invoiceID
				entry.UpdatedAt = time.Now().UTC()
				if err := s.LedgerRepo.Update(ctx, entry); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// handleSubscriptionDeleted mirrors a provider-side cancellation into the
// local subscription row.
func (s *webhookService) handleSubscriptionDeleted(ctx context.Context, event *stripeapi.Event) error {
	var stripeSub stripeapi.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid subscription data in webhook").
			Mark(ierr.ErrValidation)
	}

	ctx = schoolContextFromMetadata(ctx, stripeSub.Metadata)

	sub, err := s.SubscriptionRepo.GetByExternalID(ctx, stripeSub.ID)
	if err != nil {
		if ierr.IsNotFound(err) {
			s.Logger.Warnw("subscription delete for unknown subscription, ignoring",
				"external_subscription_id", stripeSub.ID)
			return nil
		}
		return err
	}
	if sub.SubscriptionStatus == types.SubscriptionStatusCancelled {
		return nil
	}

	sub.SubscriptionStatus = types.SubscriptionStatusCancelled
	sub.EndDate = time.Now().UTC()
	sub.UpdatedAt = time.Now().UTC()
	if err := s.SubscriptionRepo.Update(ctx, sub); err != nil {
		return err
	}

	s.Logger.Infow("subscription cancelled from webhook",
		"subscription_id", sub.ID,
		"external_subscription_id", stripeSub.ID)
	return nil
}

// handleCheckoutSessionCompleted records a paid checkout as an approved
// gateway deposit, keyed by the session id for idempotency.
func (s *webhookService) handleCheckoutSessionCompleted(ctx context.Context, event *stripeapi.Event) error {
	var session stripeapi.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return ierr.WithError(err).
			WithHint("Invalid checkout session data in webhook").
			Mark(ierr.ErrValidation)
	}
	if session.PaymentStatus != stripeapi.CheckoutSessionPaymentStatusPaid {
		s.Logger.Infow("checkout session completed without payment, ignoring",
			"session_id", session.ID,
			"payment_status", session.PaymentStatus)
		return nil
	}

	ctx = schoolContextFromMetadata(ctx, session.Metadata)

	existing, err := s.DepositRepo.GetByTransactionID(ctx, session.ID)
	if err != nil && !ierr.IsNotFound(err) {
		return err
	}
	if existing != nil {
		if existing.DepositStatus != types.DepositStatusPending {
			return nil
		}
		_, err := s.deposits.ApproveDeposit(ctx, existing.ID)
		return err
	}

	studentID := session.Metadata["student_id"]
	if studentID == "" {
		return ierr.NewError("checkout session missing student").
			WithHint("Checkout sessions must carry a student_id metadata key").
			Mark(ierr.ErrValidation)
	}

	created, err := s.deposits.RecordDeposit(ctx, &dto.RecordDepositRequest{
		StudentID:     studentID,
		Amount:        session.AmountTotal / 100,
		Reason:        "online payment",
		Source:        string(types.PaymentSourceStripe),
		TransactionID: session.ID,
	})
	if err != nil {
		return err
	}
	_, err = s.deposits.ApproveDeposit(ctx, created.ID)
	return err
}

// ProcessChapaEvent handles the Chapa payment callback. The signature is
// verified first, then the transaction is re-verified server side before
// the matching pending deposit is approved.
func (s *webhookService) ProcessChapaEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := s.chapaClient.ParseWebhookEvent(payload, signature)
	if err != nil {
		return err
	}

	s.Logger.Infow("processing Chapa webhook event",
		"event", event.Event,
		"tx_ref", event.TxRef,
		"status", event.Status)

	if !event.Succeeded() {
		s.Logger.Infow("Chapa event is not a settled payment, ignoring",
			"tx_ref", event.TxRef,
			"status", event.Status)
		return nil
	}

	// Never trust the callback body alone
	verification, err := s.chapaClient.VerifyTransaction(ctx, event.TxRef)
	if err != nil {
		return err
	}
	if !verification.Succeeded() {
		return ierr.NewError("transaction did not verify as paid").
			WithHintf("Chapa reports transaction %s as %s", event.TxRef, verification.Data.Status).
			Mark(ierr.ErrValidation)
	}

	// Chapa callbacks carry no school metadata; the deposit row recorded
	// at checkout supplies the scope for everything that follows
	d, err := s.DepositRepo.LookupByTransactionID(ctx, event.TxRef)
	if err != nil {
		return err
	}
	ctx = types.SetSchoolID(ctx, d.SchoolID)

	if d.DepositStatus != types.DepositStatusPending {
		// Already settled by an earlier delivery
		return nil
	}

	// The verified amount is authoritative over what the checkout recorded
	verifiedAmount := verification.Data.Amount.Round(0).IntPart()
	if verifiedAmount != d.Amount {
		s.Logger.Warnw("deposit amount corrected from verification",
			"deposit_id", d.ID,
			"recorded", d.Amount,
			"verified", verifiedAmount)
		d.Amount = verifiedAmount
		d.UpdatedAt = time.Now().UTC()
		if err := s.DepositRepo.Update(ctx, d); err != nil {
			return err
		}
	}

	_, err = s.deposits.ApproveDeposit(ctx, d.ID)
	return err
}

// schoolContextFromMetadata scopes the context to the school named in the
// provider metadata, when present.
func schoolContextFromMetadata(ctx context.Context, metadata map[string]string) context.Context {
	if schoolID := metadata["school_id"]; schoolID != "" {
		return types.SetSchoolID(ctx, schoolID)
	}
	return ctx
}
