package models

import (
	"time"

	"github.com/flexprice/lifecycle/internal/domain/trigger"
)

// ItemCancellationWorkflowInput is carried by a cancellation schedule and handed to
// the workflow it starts
type ItemCancellationWorkflowInput struct {
	TriggerName string          `json:"trigger_name"`
	FireAt      time.Time       `json:"fire_at"`
	Payload     trigger.Payload `json:"payload"`
}

// NewItemCancellationWorkflowInput builds the workflow input for a trigger
func NewItemCancellationWorkflowInput(t *trigger.Trigger) ItemCancellationWorkflowInput {
	return ItemCancellationWorkflowInput{
		TriggerName: t.Name,
		FireAt:      t.FireAt.UTC(),
		Payload:     t.Payload,
	}
}

func (i *ItemCancellationWorkflowInput) Validate() error {
	if i.TriggerName == "" {
		return NewTemporalValidationError("trigger name is required")
	}

	if i.Payload.SubscriptionID == "" || i.Payload.ItemID == "" {
		return NewTemporalValidationError("subscription ID and item ID are required")
	}

	return nil
}
