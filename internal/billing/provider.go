package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionInfo is the provider-neutral view of a hosted subscription.
// Period bounds come from the provider and anchor proration math.
type SubscriptionInfo struct {
	ID                 string
	CustomerID         string
	Status             string
	ItemID             string
	PriceID            string
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	StartDate          time.Time
}

// InvoiceLine is one line of a proration invoice. Negative amounts are
// credits.
type InvoiceLine struct {
	Description string
	Amount      decimal.Decimal
	Currency    string
}

// Invoice is the provider-neutral view of a created invoice.
type Invoice struct {
	ID     string
	Status string
	Total  int64
}

// CreateInvoiceRequest carries everything needed to raise a one-off
// invoice against a hosted customer.
type CreateInvoiceRequest struct {
	CustomerID  string
	Currency    string
	Description string
	Lines       []InvoiceLine
	Metadata    map[string]string
	// AutoCollect finalizes and attempts payment immediately
	AutoCollect bool
}

// Provider abstracts the hosted billing gateway. The Stripe
// implementation is the default; implementations must be safe for
// concurrent use.
type Provider interface {
	// GetSubscription fetches the live subscription state from the provider
	GetSubscription(ctx context.Context, subscriptionID string) (*SubscriptionInfo, error)

	// SwapSubscriptionPrice moves the subscription's single item to a new
	// price without provider-side proration
	SwapSubscriptionPrice(ctx context.Context, subscriptionID, itemID, newPriceID string) error

	// CreateInvoice raises a one-off invoice with the given lines
	CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*Invoice, error)

	// CancelSubscription cancels the subscription immediately
	CancelSubscription(ctx context.Context, subscriptionID string) error
}
