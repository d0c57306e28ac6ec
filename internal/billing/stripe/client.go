package stripe

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/temaribet/temaribet/internal/config"
	"github.com/temaribet/temaribet/internal/logger"
)

// Client handles Stripe API client setup and configuration
type Client struct {
	api           *stripe.Client
	webhookSecret string
	logger        *logger.Logger
}

// NewClient creates a new Stripe client from static deployment config
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		api:           stripe.NewClient(cfg.Stripe.SecretKey, nil),
		webhookSecret: cfg.Stripe.WebhookSecret,
		logger:        logger,
	}
}

// API returns the underlying Stripe SDK client
func (c *Client) API() *stripe.Client {
	return c.api
}

// WebhookSecret returns the endpoint signing secret used to verify
// incoming webhook payloads
func (c *Client) WebhookSecret() string {
	return c.webhookSecret
}
