package stripe

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/temaribet/temaribet/internal/billing"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
)

// provider implements billing.Provider on top of the Stripe SDK.
type provider struct {
	client *Client
	logger *logger.Logger
}

// NewProvider creates the Stripe-backed billing provider
func NewProvider(client *Client, logger *logger.Logger) billing.Provider {
	return &provider{
		client: client,
		logger: logger,
	}
}

// GetSubscription fetches the live subscription state from Stripe with
// its items expanded. Period bounds come from the first item.
func (p *provider) GetSubscription(ctx context.Context, subscriptionID string) (*billing.SubscriptionInfo, error) {
	params := &stripe.SubscriptionRetrieveParams{
		Expand: []*string{
			stripe.String("items.data.price"),
		},
	}

	stripeSub, err := p.client.API().V1Subscriptions.Retrieve(ctx, subscriptionID, params)
	if err != nil {
		p.logger.Errorw("failed to retrieve subscription from Stripe",
			"error", err,
			"subscription_id", subscriptionID)
		return nil, ierr.NewError("failed to retrieve subscription from Stripe").
			WithHint("Could not fetch subscription information from Stripe").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
				"error":           err.Error(),
			}).
			Mark(ierr.ErrProvider)
	}

	if stripeSub.Items == nil || len(stripeSub.Items.Data) == 0 {
		return nil, ierr.NewError("subscription has no items").
			WithHint("Stripe subscription carries no price items").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
			}).
			Mark(ierr.ErrProvider)
	}

	firstItem := stripeSub.Items.Data[0]

	info := &billing.SubscriptionInfo{
		ID:                 stripeSub.ID,
		Status:             string(stripeSub.Status),
		ItemID:             firstItem.ID,
		CurrentPeriodStart: time.Unix(firstItem.CurrentPeriodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(firstItem.CurrentPeriodEnd, 0).UTC(),
		StartDate:          time.Unix(stripeSub.StartDate, 0).UTC(),
	}
	if stripeSub.Customer != nil {
		info.CustomerID = stripeSub.Customer.ID
	}
	if firstItem.Price != nil {
		info.PriceID = firstItem.Price.ID
	}

	return info, nil
}

// SwapSubscriptionPrice replaces the subscription's single item with the
// new price. Provider-side proration is disabled; the caller computes
// and invoices the proration itself.
func (p *provider) SwapSubscriptionPrice(ctx context.Context, subscriptionID, itemID, newPriceID string) error {
	params := &stripe.SubscriptionUpdateParams{
		Items: []*stripe.SubscriptionUpdateItemParams{
			{
				ID:    stripe.String(itemID),
				Price: stripe.String(newPriceID),
			},
		},
		ProrationBehavior: stripe.String("none"),
	}

	_, err := p.client.API().V1Subscriptions.Update(ctx, subscriptionID, params)
	if err != nil {
		p.logger.Errorw("failed to update subscription price in Stripe",
			"error", err,
			"subscription_id", subscriptionID,
			"new_price_id", newPriceID)
		return ierr.NewError("failed to update subscription in Stripe").
			WithHint("Unable to move the subscription to the new plan").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
				"new_price_id":    newPriceID,
				"error":           err.Error(),
			}).
			Mark(ierr.ErrProvider)
	}

	return nil
}

// CreateInvoice raises a one-off invoice with the given lines against
// the customer. Lines are attached as invoice items before the invoice
// is finalized; negative amounts become credit lines.
func (p *provider) CreateInvoice(ctx context.Context, req *billing.CreateInvoiceRequest) (*billing.Invoice, error) {
	api := p.client.API()

	createParams := &stripe.InvoiceCreateParams{
		Customer:         stripe.String(req.CustomerID),
		Currency:         stripe.String(strings.ToLower(req.Currency)),
		AutoAdvance:      stripe.Bool(req.AutoCollect),
		Description:      stripe.String(req.Description),
		Metadata:         req.Metadata,
		CollectionMethod: stripe.String(string(stripe.InvoiceCollectionMethodChargeAutomatically)),
	}

	stripeInvoice, err := api.V1Invoices.Create(ctx, createParams)
	if err != nil {
		p.logger.Errorw("failed to create draft invoice in Stripe",
			"error", err,
			"customer_id", req.CustomerID)
		return nil, ierr.NewError("failed to create Stripe invoice").
			WithHint("Unable to create draft invoice in Stripe").
			WithReportableDetails(map[string]interface{}{
				"customer_id": req.CustomerID,
				"error":       err.Error(),
			}).
			Mark(ierr.ErrProvider)
	}

	for _, line := range req.Lines {
		// Stripe amounts are integer cents
		amountCents := line.Amount.Mul(decimal.NewFromInt(100)).IntPart()

		itemParams := &stripe.InvoiceItemCreateParams{
			Customer:    stripe.String(req.CustomerID),
			Invoice:     stripe.String(stripeInvoice.ID),
			Currency:    stripe.String(strings.ToLower(line.Currency)),
			Description: stripe.String(line.Description),
			Amount:      stripe.Int64(amountCents),
		}

		if _, err := api.V1InvoiceItems.Create(ctx, itemParams); err != nil {
			p.logger.Errorw("failed to add line item to Stripe invoice",
				"error", err,
				"stripe_invoice_id", stripeInvoice.ID,
				"description", line.Description)
			return nil, ierr.NewError("failed to add line item to Stripe").
				WithHint("Unable to add line item to Stripe invoice").
				WithReportableDetails(map[string]interface{}{
					"stripe_invoice_id": stripeInvoice.ID,
					"error":             err.Error(),
				}).
				Mark(ierr.ErrProvider)
		}
	}

	finalizeParams := &stripe.InvoiceFinalizeInvoiceParams{
		AutoAdvance: stripe.Bool(req.AutoCollect),
	}

	finalized, err := api.V1Invoices.FinalizeInvoice(ctx, stripeInvoice.ID, finalizeParams)
	if err != nil {
		p.logger.Errorw("failed to finalize Stripe invoice",
			"error", err,
			"stripe_invoice_id", stripeInvoice.ID)
		return nil, ierr.NewError("failed to finalize Stripe invoice").
			WithHint("Unable to finalize invoice in Stripe").
			WithReportableDetails(map[string]interface{}{
				"stripe_invoice_id": stripeInvoice.ID,
				"error":             err.Error(),
			}).
			Mark(ierr.ErrProvider)
	}

	p.logger.Infow("created Stripe invoice",
		"stripe_invoice_id", finalized.ID,
		"status", finalized.Status,
		"total", finalized.Total)

	return &billing.Invoice{
		ID:     finalized.ID,
		Status: string(finalized.Status),
		Total:  finalized.Total,
	}, nil
}

// CancelSubscription cancels the subscription immediately
func (p *provider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	_, err := p.client.API().V1Subscriptions.Cancel(ctx, subscriptionID, &stripe.SubscriptionCancelParams{})
	if err != nil {
		p.logger.Errorw("failed to cancel subscription in Stripe",
			"error", err,
			"subscription_id", subscriptionID)
		return ierr.NewError("failed to cancel subscription in Stripe").
			WithHint("Unable to cancel the subscription with Stripe").
			WithReportableDetails(map[string]interface{}{
				"subscription_id": subscriptionID,
				"error":           err.Error(),
			}).
			Mark(ierr.ErrProvider)
	}

	return nil
}
