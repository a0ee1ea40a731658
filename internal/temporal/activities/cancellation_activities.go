package activities

import (
	"context"

	"github.com/flexprice/lifecycle/internal/domain/events"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/publisher"
	"github.com/flexprice/lifecycle/internal/temporal/models"
)

// CancellationActivities contains the activities run when a cancellation trigger fires
type CancellationActivities struct {
	publisher publisher.EventPublisher
	source    string
	logger    *logger.Logger
}

// NewCancellationActivities creates a new CancellationActivities instance
func NewCancellationActivities(publisher publisher.EventPublisher, source string, logger *logger.Logger) *CancellationActivities {
	return &CancellationActivities{
		publisher: publisher,
		source:    source,
		logger:    logger,
	}
}

// ApplyItemCancellation announces that a cancelled item reached its period end.
// This method will be registered as "ApplyItemCancellation" in Temporal
func (a *CancellationActivities) ApplyItemCancellation(ctx context.Context, input models.ItemCancellationWorkflowInput) error {
	if err := input.Validate(); err != nil {
		return err
	}

	event := events.NewDomainEvent(
		events.EventSubscriptionItemPeriodEnded,
		a.source,
		input.Payload.SubscriptionID,
		&events.ItemPeriodEndedDetail{
			SubscriptionID:    input.Payload.SubscriptionID,
			CustomerID:        input.Payload.CustomerID,
			ItemID:            input.Payload.ItemID,
			Status:            string(input.Payload.Status),
			CancelAtPeriodEnd: input.Payload.CancelAtPeriodEnd,
		},
	)

	if err := a.publisher.Publish(ctx, event); err != nil {
		a.logger.Errorw("failed to publish item period ended event",
			"error", err,
			"trigger_name", input.TriggerName,
			"subscription_id", input.Payload.SubscriptionID,
			"item_id", input.Payload.ItemID,
		)
		return err
	}

	a.logger.Infow("item cancellation applied",
		"trigger_name", input.TriggerName,
		"subscription_id", input.Payload.SubscriptionID,
		"item_id", input.Payload.ItemID,
		"event_id", event.ID,
	)
	return nil
}
