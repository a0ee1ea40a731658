package v1

import (
	"io"
	"net/http"
	"time"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/sentry"
	"github.com/flexprice/lifecycle/internal/service"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v82"
)

// EventVerifier checks a webhook signature and decodes the event
type EventVerifier interface {
	ParseWebhookEvent(payload []byte, signature string) (*stripe.Event, error)
}

// WebhookHandler handles webhook-related endpoints
type WebhookHandler struct {
	verifier      EventVerifier
	subscriptions service.SubscriptionChangeService
	sentry        *sentry.Service
	logger        *logger.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(
	verifier EventVerifier,
	subscriptions service.SubscriptionChangeService,
	sentry *sentry.Service,
	logger *logger.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		verifier:      verifier,
		subscriptions: subscriptions,
		sentry:        sentry,
		logger:        logger,
	}
}

// HandleStripeWebhook verifies a Stripe delivery and runs the subscription
// change flow on it. Dependency failures answer 5xx so Stripe redelivers.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Errorw("failed to read request body", "error", err)
		c.Error(ierr.WithError(err).
			WithHint("Failed to read request body").
			Mark(ierr.ErrValidation))
		return
	}

	event, err := h.verifier.ParseWebhookEvent(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.Error(err)
		return
	}

	h.logger.Debugw("processing webhook",
		"event_id", event.ID,
		"event_type", event.Type,
		"payload_length", len(body),
		"request_id", types.GetRequestID(c.Request.Context()),
	)

	span, ctx := h.sentry.MonitorEventProcessing(c.Request.Context(), string(event.Type), time.Unix(event.Created, 0), map[string]interface{}{
		"event_id": event.ID,
	})
	if span != nil {
		defer span.Finish()
	}

	verdict, err := h.subscriptions.HandleStripeEvent(ctx, event)
	if err != nil {
		h.logger.Errorw("failed to handle stripe webhook",
			"error", err,
			"event_id", event.ID,
			"event_type", event.Type,
		)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
		"event_id": event.ID,
		"verdict":  verdict,
	})
}
