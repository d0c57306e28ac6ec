package testutil

import (
	"context"
	"time"

	"github.com/temaribet/temaribet/internal/domain/subscription"
	ierr "github.com/temaribet/temaribet/internal/errors"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	subscriptions *InMemoryStore[*subscription.Subscription]
	packages      *InMemoryStore[*subscription.Package]
}

// NewInMemorySubscriptionStore creates a new in-memory subscription and
// package repository
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		subscriptions: NewInMemoryStore[*subscription.Subscription](),
		packages:      NewInMemoryStore[*subscription.Package](),
	}
}

// Clear resets all stored data
func (m *InMemorySubscriptionStore) Clear() {
	m.subscriptions.Clear()
	m.packages.Clear()
}

// AddSubscription seeds a subscription into the store
func (m *InMemorySubscriptionStore) AddSubscription(ctx context.Context, sub *subscription.Subscription) error {
	return m.subscriptions.Create(ctx, sub.ID, sub)
}

// AddPackage seeds a package into the store
func (m *InMemorySubscriptionStore) AddPackage(ctx context.Context, pkg *subscription.Package) error {
	return m.packages.Create(ctx, pkg.ID, pkg)
}

// Get retrieves a subscription by ID
func (m *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := m.subscriptions.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("subscription not found").
			WithHintf("Subscription with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

// GetByExternalID retrieves a subscription by its provider id
func (m *InMemorySubscriptionStore) GetByExternalID(ctx context.Context, externalID string) (*subscription.Subscription, error) {
	matches, err := m.subscriptions.List(ctx, nil,
		func(_ context.Context, s *subscription.Subscription, _ interface{}) bool {
			return s.ExternalSubscriptionID == externalID
		}, nil)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHintf("No subscription linked to provider subscription %s", externalID).
			Mark(ierr.ErrNotFound)
	}
	return matches[0], nil
}

// Update updates an existing subscription
func (m *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").
			WithHint("Subscription cannot be nil").
			Mark(ierr.ErrValidation)
	}
	sub.UpdatedAt = time.Now().UTC()
	if err := m.subscriptions.Update(ctx, sub.ID, sub); err != nil {
		return ierr.NewError("subscription not found").
			WithHintf("Subscription with ID %s was not found", sub.ID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// GetPackage retrieves a package by ID
func (m *InMemorySubscriptionStore) GetPackage(ctx context.Context, id string) (*subscription.Package, error) {
	pkg, err := m.packages.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("package not found").
			WithHintf("Package with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return pkg, nil
}

// ListPackages lists all active packages
func (m *InMemorySubscriptionStore) ListPackages(ctx context.Context) ([]*subscription.Package, error) {
	return m.packages.List(ctx, nil,
		func(_ context.Context, p *subscription.Package, _ interface{}) bool {
			return p.Active
		},
		func(i, j *subscription.Package) bool {
			if i.DurationMonths == j.DurationMonths {
				return i.Price.LessThan(j.Price)
			}
			return i.DurationMonths < j.DurationMonths
		})
}
