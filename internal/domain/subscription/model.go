package subscription

import (
	"time"

	ierr "github.com/temaribet/temaribet/internal/errors"
	"github.com/temaribet/temaribet/internal/types"
	"github.com/shopspring/decimal"
)

// Subscription ties a student to a recurring billing package and mirrors
// the state held at the external billing provider.
type Subscription struct {
	// Unique identifier for this subscription
	ID string `db:"id" json:"id"`
	// Student being billed
	StudentID string `db:"student_id" json:"student_id"`
	// Package currently subscribed to
	PackageID string `db:"package_id" json:"package_id"`
	// Lifecycle state
	SubscriptionStatus types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	// Start of the current billing cycle
	StartDate time.Time `db:"start_date" json:"start_date"`
	// End of the current billing cycle
	EndDate time.Time `db:"end_date" json:"end_date"`
	// Next charge date at the provider
	NextBillingDate time.Time `db:"next_billing_date" json:"next_billing_date"`
	// Subscription id at the external billing provider
	ExternalSubscriptionID string `db:"external_subscription_id" json:"external_subscription_id"`
	// Customer id at the external billing provider
	ExternalCustomerID string `db:"external_customer_id" json:"external_customer_id"`

	types.BaseModel
}

// Package is a recurring billing plan a student can subscribe to.
type Package struct {
	// Unique identifier for this package
	ID string `db:"id" json:"id"`
	// Display name
	Name string `db:"name" json:"name"`
	// Total price for one cycle, in whole currency units
	Price decimal.Decimal `db:"price" json:"price"`
	// Cycle length in months
	DurationMonths int `db:"duration_months" json:"duration_months"`
	// Three-letter currency code
	Currency string `db:"currency" json:"currency"`
	// Whether the package can be subscribed to
	Active bool `db:"active" json:"active"`
	// Price id at the external billing provider
	ExternalPriceID string `db:"external_price_id" json:"external_price_id"`

	types.BaseModel
}

// MonthlyRate returns the package price normalized to one month, the
// basis for upgrade/downgrade comparison.
func (p *Package) MonthlyRate() decimal.Decimal {
	if p.DurationMonths <= 0 {
		return decimal.Zero
	}
	return p.Price.Div(decimal.NewFromInt(int64(p.DurationMonths)))
}

// Validate validates the subscription
func (s *Subscription) Validate() error {
	if s.StudentID == "" {
		return ierr.NewError("invalid student id").
			WithHint("Student id is required").
			Mark(ierr.ErrValidation)
	}
	if s.PackageID == "" {
		return ierr.NewError("invalid package id").
			WithHint("Package id is required").
			Mark(ierr.ErrValidation)
	}
	if err := s.SubscriptionStatus.Validate(); err != nil {
		return ierr.WithError(err).
			WithHint("Status must be trialing, active or cancelled").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TableName returns the table name for subscriptions
func (s *Subscription) TableName() string {
	return "subscriptions"
}

// TableName returns the table name for packages
func (p *Package) TableName() string {
	return "packages"
}
