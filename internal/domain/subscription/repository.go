package subscription

import "context"

// Repository defines the interface for subscription and package persistence
type Repository interface {
	Get(ctx context.Context, id string) (*Subscription, error)
	GetByExternalID(ctx context.Context, externalID string) (*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error

	GetPackage(ctx context.Context, id string) (*Package, error)
	ListPackages(ctx context.Context) ([]*Package, error)
}
