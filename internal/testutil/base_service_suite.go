package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/temaribet/temaribet/internal/config"
	"github.com/temaribet/temaribet/internal/domain/commission"
	"github.com/temaribet/temaribet/internal/domain/deposit"
	"github.com/temaribet/temaribet/internal/domain/ledger"
	"github.com/temaribet/temaribet/internal/domain/student"
	"github.com/temaribet/temaribet/internal/domain/subscription"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/postgres"
	"github.com/temaribet/temaribet/internal/types"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	StudentRepo      student.Repository
	LedgerRepo       ledger.Repository
	DepositRepo      deposit.Repository
	SubscriptionRepo subscription.Repository
	CommissionRepo   commission.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	stores   Stores
	provider *MockBillingProvider
	db       postgres.IClient
	logger   *logger.Logger
	config   *config.Configuration
	now      time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := &config.Configuration{
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Features: config.FeaturesConfig{
			CommissionTracking: true,
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		StudentRepo:      NewInMemoryStudentStore(),
		LedgerRepo:       NewInMemoryLedgerStore(),
		DepositRepo:      NewInMemoryDepositStore(),
		SubscriptionRepo: NewInMemorySubscriptionStore(),
		CommissionRepo:   NewInMemoryCommissionStore(),
	}
	s.provider = NewMockBillingProvider()
	s.db = NewMockPostgresClient(s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.StudentRepo.(*InMemoryStudentStore).Clear()
	s.stores.LedgerRepo.(*InMemoryLedgerStore).Clear()
	s.stores.DepositRepo.(*InMemoryDepositStore).Clear()
	s.stores.SubscriptionRepo.(*InMemorySubscriptionStore).Clear()
	s.stores.CommissionRepo.(*InMemoryCommissionStore).Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetProvider returns the mock billing provider
func (s *BaseServiceTestSuite) GetProvider() *MockBillingProvider {
	return s.provider
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now.UTC()
}
