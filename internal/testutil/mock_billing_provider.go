package testutil

import (
	"context"
	"sync"

	"github.com/temaribet/temaribet/internal/billing"
	ierr "github.com/temaribet/temaribet/internal/errors"
)

var _ billing.Provider = (*MockBillingProvider)(nil)

// MockBillingProvider is a scriptable billing.Provider for tests. It
// records every call so tests can assert the provider phase ran before
// local writes.
type MockBillingProvider struct {
	mu sync.Mutex

	Subscriptions map[string]*billing.SubscriptionInfo

	// Fail* switches make the corresponding call return a provider error
	FailGetSubscription bool
	FailSwapPrice       bool
	FailCreateInvoice   bool
	FailCancel          bool

	SwappedPrices   []string
	CreatedInvoices []*billing.CreateInvoiceRequest
	Cancelled       []string
}

// NewMockBillingProvider creates a new mock provider
func NewMockBillingProvider() *MockBillingProvider {
	return &MockBillingProvider{
		Subscriptions: make(map[string]*billing.SubscriptionInfo),
	}
}

func (m *MockBillingProvider) GetSubscription(ctx context.Context, subscriptionID string) (*billing.SubscriptionInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailGetSubscription {
		return nil, ierr.NewError("provider unavailable").
			WithHint("Simulated provider failure").
			Mark(ierr.ErrProvider)
	}
	info, ok := m.Subscriptions[subscriptionID]
	if !ok {
		return nil, ierr.NewError("subscription not found at provider").
			WithHintf("No provider subscription %s", subscriptionID).
			Mark(ierr.ErrProvider)
	}
	return info, nil
}

func (m *MockBillingProvider) SwapSubscriptionPrice(ctx context.Context, subscriptionID, itemID, newPriceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailSwapPrice {
		return ierr.NewError("provider unavailable").
			WithHint("Simulated provider failure").
			Mark(ierr.ErrProvider)
	}
	m.SwappedPrices = append(m.SwappedPrices, subscriptionID+":"+newPriceID)
	if info, ok := m.Subscriptions[subscriptionID]; ok {
		info.PriceID = newPriceID
	}
	return nil
}

func (m *MockBillingProvider) CreateInvoice(ctx context.Context, req *billing.CreateInvoiceRequest) (*billing.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateInvoice {
		return nil, ierr.NewError("provider unavailable").
			WithHint("Simulated provider failure").
			Mark(ierr.ErrProvider)
	}
	m.CreatedInvoices = append(m.CreatedInvoices, req)
	return &billing.Invoice{
		ID:     "in_test",
		Status: "open",
	}, nil
}

func (m *MockBillingProvider) CancelSubscription(ctx context.Context, subscriptionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCancel {
		return ierr.NewError("provider unavailable").
			WithHint("Simulated provider failure").
			Mark(ierr.ErrProvider)
	}
	m.Cancelled = append(m.Cancelled, subscriptionID)
	return nil
}
