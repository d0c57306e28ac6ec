package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/temaribet/temaribet/internal/domain/subscription"
	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/postgres"
	"github.com/temaribet/temaribet/internal/types"
)

type subscriptionRepository struct {
	db     postgres.IClient
	logger *logger.Logger
}

// NewSubscriptionRepository creates the postgres-backed subscription and
// package repository
func NewSubscriptionRepository(db postgres.IClient, logger *logger.Logger) subscription.Repository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

const subscriptionColumns = `
	id, student_id, package_id, subscription_status, start_date, end_date,
	next_billing_date, external_subscription_id, external_customer_id,
	school_id, status, created_at, updated_at, created_by, updated_by`

const packageColumns = `
	id, name, price, duration_months, currency, active, external_price_id,
	school_id, status, created_at, updated_at, created_by, updated_by`

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND school_id = $2`

	var sub subscription.Subscription
	err := r.db.Querier(ctx).GetContext(ctx, &sub, query, id, types.GetSchoolID(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHintf("Subscription with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"subscription_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get subscription").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByExternalID(ctx context.Context, externalID string) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE external_subscription_id = $1 AND school_id = $2`

	var sub subscription.Subscription
	err := r.db.Querier(ctx).GetContext(ctx, &sub, query, externalID, types.GetSchoolID(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHintf("No subscription linked to provider subscription %s", externalID).
				WithReportableDetails(map[string]interface{}{"external_subscription_id": externalID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to look up subscription by provider id").
			Mark(ierr.ErrDatabase)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			package_id = :package_id,
			subscription_status = :subscription_status,
			start_date = :start_date,
			end_date = :end_date,
			next_billing_date = :next_billing_date,
			external_subscription_id = :external_subscription_id,
			external_customer_id = :external_customer_id,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id AND school_id = :school_id`

	result, err := r.db.Querier(ctx).NamedExec(query, sub)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			WithReportableDetails(map[string]interface{}{"subscription_id": sub.ID}).
			Mark(ierr.ErrDatabase)
	}
	return requireRowAffected(result, "subscription", sub.ID)
}

func (r *subscriptionRepository) GetPackage(ctx context.Context, id string) (*subscription.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE id = $1 AND school_id = $2`

	var pkg subscription.Package
	err := r.db.Querier(ctx).GetContext(ctx, &pkg, query, id, types.GetSchoolID(ctx))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("package not found").
				WithHintf("Package with ID %s was not found", id).
				WithReportableDetails(map[string]interface{}{"package_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get package").
			Mark(ierr.ErrDatabase)
	}
	return &pkg, nil
}

func (r *subscriptionRepository) ListPackages(ctx context.Context) ([]*subscription.Package, error) {
	query := `SELECT ` + packageColumns + ` FROM packages WHERE school_id = $1 AND active ORDER BY duration_months, price`

	packages := make([]*subscription.Package, 0)
	err := r.db.Querier(ctx).SelectContext(ctx, &packages, query, types.GetSchoolID(ctx))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list packages").
			Mark(ierr.ErrDatabase)
	}
	return packages, nil
}
