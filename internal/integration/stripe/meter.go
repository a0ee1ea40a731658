package stripe

import (
	"context"
	"net/http"

	"github.com/flexprice/lifecycle/internal/domain/usage"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// MeterEventCreator is the part of the Stripe client used to record meter events
type MeterEventCreator interface {
	Create(ctx context.Context, params *stripe.BillingMeterEventCreateParams) (*stripe.BillingMeterEvent, error)
}

// MeterClient submits usage to Stripe billing meters
type MeterClient struct {
	events MeterEventCreator
	logger *logger.Logger
}

// NewMeterClient creates a meter client on top of the configured Stripe client
func NewMeterClient(client *Client, logger *logger.Logger) *MeterClient {
	return NewMeterClientWithCreator(client.API().V1BillingMeterEvents, logger)
}

// NewMeterClientWithCreator creates a meter client around any meter event creator
func NewMeterClientWithCreator(events MeterEventCreator, logger *logger.Logger) *MeterClient {
	return &MeterClient{
		events: events,
		logger: logger,
	}
}

// Submit records a single meter event. The idempotency key makes a resubmission of
// the same event a no-op on the Stripe side.
func (m *MeterClient) Submit(ctx context.Context, event *usage.MeterEvent, idempotencyKey string) error {
	if event == nil {
		return ierr.NewError("meter event is required").
			Mark(ierr.ErrValidation)
	}

	params := &stripe.BillingMeterEventCreateParams{
		EventName:  stripe.String(event.EventName),
		Identifier: stripe.String(event.Identifier),
		Timestamp:  stripe.Int64(event.Timestamp),
		Payload:    event.Payload.ToMap(),
	}
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}

	if _, err := m.events.Create(ctx, params); err != nil {
		m.logger.Errorw("failed to create meter event in Stripe",
			"error", err,
			"identifier", event.Identifier,
			"event_name", event.EventName,
			"customer_id", event.Payload.CustomerID,
		)
		return ierr.WithError(err).
			WithHint("Could not submit meter event to Stripe").
			WithReportableDetails(map[string]interface{}{
				"identifier": event.Identifier,
				"event_name": event.EventName,
				"retryable":  IsRetryable(err),
			}).
			Mark(ierr.ErrDependency)
	}

	m.logger.Debugw("created meter event in Stripe",
		"identifier", event.Identifier,
		"event_name", event.EventName,
		"customer_id", event.Payload.CustomerID,
	)
	return nil
}

// IsRetryable reports whether a Stripe failure is worth redelivering
func IsRetryable(err error) bool {
	var stripeErr *stripe.Error
	if !ierr.As(err, &stripeErr) {
		return true
	}
	switch stripeErr.HTTPStatusCode {
	case http.StatusTooManyRequests, http.StatusConflict:
		return true
	}
	return stripeErr.HTTPStatusCode >= http.StatusInternalServerError
}
