package stripe

import (
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// ParseWebhookEvent verifies the Stripe-Signature header and decodes the event
func (c *Client) ParseWebhookEvent(payload []byte, signature string) (*stripe.Event, error) {
	if c.config.WebhookSecret == "" {
		return nil, ierr.NewError("stripe webhook secret is not configured").
			WithHint("Webhook delivery is disabled until a webhook secret is set").
			Mark(ierr.ErrValidation)
	}
	if signature == "" {
		return nil, ierr.NewError("missing stripe signature").
			WithHint("Stripe-Signature header is required").
			Mark(ierr.ErrValidation)
	}

	// Verify the webhook signature, ignoring API version mismatch
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.config.WebhookSecret, options)
	if err != nil {
		c.logger.Errorw("Stripe webhook verification failed", "error", err)
		return nil, ierr.NewError("failed to verify webhook signature").
			WithHint("Invalid webhook signature or payload").
			Mark(ierr.ErrValidation)
	}
	return &event, nil
}
