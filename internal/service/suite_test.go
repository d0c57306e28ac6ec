package service

import (
	"github.com/temaribet/temaribet/internal/domain/proration"
	"github.com/temaribet/temaribet/internal/testutil"
)

// testServiceParams assembles ServiceParams from the shared test suite
// fixtures.
func testServiceParams(s *testutil.BaseServiceTestSuite) ServiceParams {
	stores := s.GetStores()
	return ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		StudentRepo:      stores.StudentRepo,
		LedgerRepo:       stores.LedgerRepo,
		DepositRepo:      stores.DepositRepo,
		SubscriptionRepo: stores.SubscriptionRepo,
		CommissionRepo:   stores.CommissionRepo,
		Provider:         s.GetProvider(),
		Calculator:       proration.NewCalculator(),
	}
}
