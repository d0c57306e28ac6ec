package router

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/temaribet/temaribet/internal/api/v1"
	"github.com/temaribet/temaribet/internal/rest/middleware"
)

// Handlers groups every v1 handler the router mounts
type Handlers struct {
	Health       *v1.HealthHandler
	Ledger       *v1.LedgerHandler
	Deposit      *v1.DepositHandler
	Subscription *v1.SubscriptionHandler
	Webhook      *v1.WebhookHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// Provider callbacks authenticate by signature, not school header
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripe)
		webhooks.POST("/chapa", handlers.Webhook.HandleChapa)
	}

	v1Group := router.Group("/v1", middleware.SchoolContextMiddleware)
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	monthly := router.Group("/payments/monthly")
	{
		monthly.GET("", handlers.Ledger.ListPayments)
		monthly.POST("", handlers.Ledger.RecordPayment)
		monthly.PUT("/:id", handlers.Ledger.UpdatePayment)
		monthly.DELETE("/:id", handlers.Ledger.DeletePayment)
	}

	deposits := router.Group("/payments/deposit")
	{
		deposits.GET("", handlers.Deposit.ListDeposits)
		deposits.POST("", handlers.Deposit.RecordDeposit)
		deposits.PUT("/:id", handlers.Deposit.ReviewDeposit)
		deposits.PATCH("/:id", handlers.Deposit.EditDeposit)
		deposits.DELETE("/:id", handlers.Deposit.DeleteDeposit)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.PATCH("/:id/upgrade", handlers.Subscription.Upgrade)
		subscriptions.PATCH("/:id/downgrade", handlers.Subscription.Downgrade)
		subscriptions.POST("/:id/cancel", handlers.Subscription.Cancel)
	}
}
