package service

import (
	"context"

	"github.com/flexprice/lifecycle/internal/domain/trigger"
	"github.com/flexprice/lifecycle/internal/domain/usage"
)

// TriggerScheduler manages named one-shot triggers
type TriggerScheduler interface {
	// CreateTrigger fails with ErrAlreadyExists when a trigger with the same name exists
	CreateTrigger(ctx context.Context, t *trigger.Trigger) error
	// UpdateTrigger replaces the fire time and payload of an existing trigger
	UpdateTrigger(ctx context.Context, t *trigger.Trigger) error
	// DeleteTrigger fails with ErrNotFound when no trigger has this name
	DeleteTrigger(ctx context.Context, name string) error
}

// MeteringClient submits usage to the billing provider
type MeteringClient interface {
	Submit(ctx context.Context, event *usage.MeterEvent, idempotencyKey string) error
}
