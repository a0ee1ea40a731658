package service

import (
	"context"

	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/domain/trigger"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/idempotency"
)

// UncancellationService removes cancellation triggers of a reverted cancellation
type UncancellationService interface {
	Revert(ctx context.Context, sub *subscription.Snapshot) error
}

type uncancellationService struct {
	ServiceParams
	keys *idempotency.Generator
}

// NewUncancellationService creates a new uncancellation handler
func NewUncancellationService(params ServiceParams) UncancellationService {
	return &uncancellationService{
		ServiceParams: params,
		keys:          idempotency.NewGenerator(),
	}
}

// Revert recomputes every item's trigger name and deletes it. Triggers that do
// not exist are skipped, so the operation is safe to repeat.
//
// Once every trigger is gone the cancellation's idempotency record is released,
// so a later cancellation of the same subscription schedules again.
func (s *uncancellationService) Revert(ctx context.Context, sub *subscription.Snapshot) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	errs := fanOut(sub.Items, 0, func(item subscription.Item) error {
		name := trigger.Name(sub.ID, item.ID)

		err := s.Scheduler.DeleteTrigger(ctx, name)
		switch {
		case err == nil:
			s.Logger.Infow("deleted cancellation trigger",
				"subscription_id", sub.ID,
				"item_id", item.ID,
				"trigger_name", name,
			)
			return nil
		case ierr.IsNotFound(err):
			s.Logger.Infow("no cancellation trigger to delete",
				"subscription_id", sub.ID,
				"item_id", item.ID,
				"trigger_name", name,
			)
			return nil
		default:
			s.Logger.Errorw("failed to delete cancellation trigger",
				"subscription_id", sub.ID,
				"item_id", item.ID,
				"trigger_name", name,
				"error", err,
			)
			return err
		}
	})

	if err := ierr.NewBatchError("delete cancellation triggers", len(sub.Items), errs, ierr.ErrBatchScheduling); err != nil {
		s.Logger.Errorw("failed to revert subscription cancellation",
			"subscription_id", sub.ID,
			"failed", len(errs),
			"total", len(sub.Items),
			"error", err,
		)
		return err
	}

	eventID := s.keys.EventID(idempotency.ScopeSubscriptionCancelled, sub.ID)
	if err := s.Gate.Release(ctx, eventID); err != nil {
		s.Logger.Errorw("failed to release cancellation record after revert",
			"subscription_id", sub.ID,
			"event_id", eventID,
			"error", err,
		)
		return err
	}

	s.Logger.Infow("reverted subscription cancellation",
		"subscription_id", sub.ID,
		"items", len(sub.Items),
	)
	return nil
}
