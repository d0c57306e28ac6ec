package service

import (
	"github.com/temaribet/temaribet/internal/billing"
	"github.com/temaribet/temaribet/internal/config"
	"github.com/temaribet/temaribet/internal/domain/commission"
	"github.com/temaribet/temaribet/internal/domain/deposit"
	"github.com/temaribet/temaribet/internal/domain/ledger"
	"github.com/temaribet/temaribet/internal/domain/proration"
	"github.com/temaribet/temaribet/internal/domain/student"
	"github.com/temaribet/temaribet/internal/domain/subscription"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	StudentRepo      student.Repository
	LedgerRepo       ledger.Repository
	DepositRepo      deposit.Repository
	SubscriptionRepo subscription.Repository
	CommissionRepo   commission.Repository

	// Billing provider and proration math
	Provider   billing.Provider
	Calculator proration.Calculator
}

// NewServiceParams assembles the common service dependency set
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	studentRepo student.Repository,
	ledgerRepo ledger.Repository,
	depositRepo deposit.Repository,
	subscriptionRepo subscription.Repository,
	commissionRepo commission.Repository,
	provider billing.Provider,
	calculator proration.Calculator,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		StudentRepo:      studentRepo,
		LedgerRepo:       ledgerRepo,
		DepositRepo:      depositRepo,
		SubscriptionRepo: subscriptionRepo,
		CommissionRepo:   commissionRepo,
		Provider:         provider,
		Calculator:       calculator,
	}
}
