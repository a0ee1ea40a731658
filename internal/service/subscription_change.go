package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/lifecycle/internal/classifier"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	stripeIntegration "github.com/flexprice/lifecycle/internal/integration/stripe"
	pubsubRouter "github.com/flexprice/lifecycle/internal/pubsub/router"
	"github.com/stripe/stripe-go/v82"
)

// SubscriptionChangeService reacts to subscription change notifications
type SubscriptionChangeService interface {
	// HandleNotification classifies the change and runs the matching action
	HandleNotification(ctx context.Context, sub *subscription.Snapshot) (classifier.Verdict, error)

	// HandleStripeEvent maps a customer.subscription.* event and handles it.
	// Other event types are ignored with an empty verdict.
	HandleStripeEvent(ctx context.Context, event *stripe.Event) (classifier.Verdict, error)

	// RegisterHandler consumes Stripe events from the subscription topic
	RegisterHandler(router *pubsubRouter.Router, subscriber message.Subscriber)
}

type subscriptionChangeService struct {
	ServiceParams
	cancellation   CancellationService
	uncancellation UncancellationService
}

// NewSubscriptionChangeService creates a new subscription change service
func NewSubscriptionChangeService(params ServiceParams) SubscriptionChangeService {
	return &subscriptionChangeService{
		ServiceParams:  params,
		cancellation:   NewCancellationService(params),
		uncancellation: NewUncancellationService(params),
	}
}

func (s *subscriptionChangeService) HandleNotification(ctx context.Context, sub *subscription.Snapshot) (classifier.Verdict, error) {
	if err := sub.Validate(); err != nil {
		return "", err
	}

	result := classifier.Classify(sub)

	s.Logger.Infow("classified subscription change",
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
		"status", sub.Status,
		"verdict", result.Verdict,
	)

	switch result.Verdict {
	case classifier.CancellationRequested:
		return result.Verdict, s.cancellation.Schedule(ctx, sub)
	case classifier.CancellationReverted:
		return result.Verdict, s.uncancellation.Revert(ctx, sub)
	default:
		s.Logger.Infow("subscription change needs no action",
			"subscription_id", sub.ID,
			"cancel_at_period_end_changed", result.Changes.CancelAtPeriodEndChanged,
			"current_period_end_changed", result.Changes.CurrentPeriodEndChanged,
			"status_changed", result.Changes.StatusChanged,
		)
		return result.Verdict, nil
	}
}

func (s *subscriptionChangeService) HandleStripeEvent(ctx context.Context, event *stripe.Event) (classifier.Verdict, error) {
	if !stripeIntegration.IsSubscriptionEvent(event) {
		s.Logger.Debugw("ignoring non subscription event",
			"event_id", event.ID,
			"event_type", event.Type,
		)
		return "", nil
	}

	sub, err := stripeIntegration.SnapshotFromEvent(event)
	if err != nil {
		s.Logger.Errorw("failed to map subscription event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err,
		)
		return "", err
	}

	return s.HandleNotification(ctx, sub)
}

func (s *subscriptionChangeService) RegisterHandler(router *pubsubRouter.Router, subscriber message.Subscriber) {
	router.AddNoPublishHandler(
		"subscription_change_handler",
		s.Config.Kafka.SubscriptionTopic,
		subscriber,
		s.processMessage,
	)

	s.Logger.Infow("registered subscription change handler",
		"topic", s.Config.Kafka.SubscriptionTopic,
	)
}

// processMessage handles one notification per message. Malformed notifications
// are logged and acknowledged since redelivery cannot fix them.
func (s *subscriptionChangeService) processMessage(msg *message.Message) error {
	event, err := stripeIntegration.ParseEvent(msg.Payload)
	if err != nil {
		s.Logger.Errorw("failed to unmarshal subscription notification",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil // Don't retry on unmarshal errors
	}

	verdict, err := s.HandleStripeEvent(msg.Context(), event)
	if ierr.IsParse(err) || ierr.IsValidation(err) {
		return nil
	}
	if err != nil {
		return err // Return error for retry
	}

	s.Logger.Debugw("subscription notification processed",
		"event_id", event.ID,
		"message_uuid", msg.UUID,
		"verdict", verdict,
	)
	return nil
}
