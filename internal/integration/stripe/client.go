package stripe

import (
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Client handles Stripe API client setup and configuration
type Client struct {
	api    *stripe.Client
	config config.StripeConfig
	logger *logger.Logger
}

// NewClient creates a new Stripe client from the stripe config section
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	logger.Debugw("initializing stripe client",
		"has_secret_key", cfg.Stripe.SecretKey != "",
		"has_webhook_secret", cfg.Stripe.WebhookSecret != "",
	)

	return &Client{
		api:    stripe.NewClient(cfg.Stripe.SecretKey, nil),
		config: cfg.Stripe,
		logger: logger,
	}
}

// API returns the configured Stripe client
func (c *Client) API() *stripe.Client {
	return c.api
}
