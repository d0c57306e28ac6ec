package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	v1 "github.com/temaribet/temaribet/internal/api/v1"
	"github.com/temaribet/temaribet/internal/billing/chapa"
	stripeclient "github.com/temaribet/temaribet/internal/billing/stripe"
	"github.com/temaribet/temaribet/internal/cache"
	"github.com/temaribet/temaribet/internal/config"
	"github.com/temaribet/temaribet/internal/domain/proration"
	"github.com/temaribet/temaribet/internal/httpclient"
	"github.com/temaribet/temaribet/internal/logger"
	"github.com/temaribet/temaribet/internal/postgres"
	"github.com/temaribet/temaribet/internal/repository"
	"github.com/temaribet/temaribet/internal/router"
	"github.com/temaribet/temaribet/internal/service"
	"go.uber.org/fx"
)

// @title Temaribet Billing API
// @version 1.0
// @description Tuition ledger and subscription billing for the Temaribet school platform
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Billing providers
			stripeclient.NewClient,
			stripeclient.NewProvider,
			chapa.NewClient,

			// Proration math
			proration.NewCalculator,

			// Repositories
			repository.NewStudentRepository,
			repository.NewLedgerRepository,
			repository.NewDepositRepository,
			repository.NewSubscriptionRepository,
			repository.NewCommissionRepository,
		),
		fx.Provide(
			service.NewServiceParams,

			service.NewLedgerService,
			service.NewDepositService,
			service.NewTransitionService,
			service.NewWebhookService,
		),
		fx.Provide(
			provideHandlers,
			router.NewRouter,
		),
		fx.Invoke(startServer),
	)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	ledgerService service.LedgerService,
	depositService service.DepositService,
	transitionService service.TransitionService,
	webhookService service.WebhookService,
) router.Handlers {
	return router.Handlers{
		Health:       v1.NewHealthHandler(logger),
		Ledger:       v1.NewLedgerHandler(ledgerService, logger),
		Deposit:      v1.NewDepositHandler(depositService, logger),
		Subscription: v1.NewSubscriptionHandler(transitionService, logger),
		Webhook:      v1.NewWebhookHandler(webhookService, logger),
	}
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
