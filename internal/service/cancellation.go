package service

import (
	"context"
	"time"

	"github.com/flexprice/lifecycle/internal/domain/events"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/domain/trigger"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/idempotency"
	"github.com/samber/lo"
)

// CancellationService schedules the deferred cancellation of a subscription's items
type CancellationService interface {
	// Schedule creates one trigger per item firing at the item's period end.
	// Item failures are reported together as a BatchError marked ErrBatchScheduling
	// after every item settled.
	Schedule(ctx context.Context, sub *subscription.Snapshot) error
}

type cancellationService struct {
	ServiceParams
	keys *idempotency.Generator
	now  func() time.Time
}

// NewCancellationService creates a new cancellation scheduler
func NewCancellationService(params ServiceParams) CancellationService {
	return &cancellationService{
		ServiceParams: params,
		keys:          idempotency.NewGenerator(),
		now:           time.Now,
	}
}

func (s *cancellationService) Schedule(ctx context.Context, sub *subscription.Snapshot) error {
	if err := sub.Validate(); err != nil {
		return err
	}

	detail := cancelledDetail(sub)
	eventID := s.keys.EventID(idempotency.ScopeSubscriptionCancelled, sub.ID)

	result, err := s.Gate.Ensure(ctx, eventID, detail)
	if err != nil {
		return err
	}
	if result.IsDuplicate {
		s.Logger.Infow("cancellation already processed, skipping",
			"subscription_id", sub.ID,
			"event_id", eventID,
		)
		return nil
	}

	now := s.now()
	errs := fanOut(sub.Items, 0, func(item subscription.Item) error {
		return s.scheduleItem(ctx, sub, item, now)
	})

	if err := ierr.NewBatchError("schedule cancellation triggers", len(sub.Items), errs, ierr.ErrBatchScheduling); err != nil {
		s.Logger.Errorw("failed to schedule cancellation triggers",
			"subscription_id", sub.ID,
			"failed", len(errs),
			"total", len(sub.Items),
			"error", err,
		)
		s.release(ctx, eventID)
		return err
	}

	event := events.NewDomainEvent(events.EventSubscriptionCancelled, s.Config.Event.Source, sub.ID, detail)
	if err := s.EventPublisher.Publish(ctx, event); err != nil {
		s.Logger.Errorw("failed to publish subscription cancelled event",
			"subscription_id", sub.ID,
			"event_id", eventID,
			"error", err,
		)
		s.release(ctx, eventID)
		return err
	}

	s.Logger.Infow("scheduled subscription cancellation",
		"subscription_id", sub.ID,
		"customer_id", sub.CustomerID,
		"items", len(sub.Items),
		"domain_event_id", event.ID,
	)
	return nil
}

func (s *cancellationService) scheduleItem(ctx context.Context, sub *subscription.Snapshot, item subscription.Item, now time.Time) error {
	fireAt := time.Unix(item.PeriodEnd, 0).UTC()
	if !fireAt.After(now) {
		s.Logger.Warnw("item period already ended, not scheduling cancellation",
			"subscription_id", sub.ID,
			"item_id", item.ID,
			"period_end", item.PeriodEnd,
		)
		return nil
	}

	t := &trigger.Trigger{
		Name:   trigger.Name(sub.ID, item.ID),
		FireAt: fireAt,
		Payload: trigger.Payload{
			CustomerID:        sub.CustomerID,
			SubscriptionID:    sub.ID,
			ItemID:            item.ID,
			Status:            sub.Status,
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		},
	}

	err := s.Scheduler.CreateTrigger(ctx, t)
	if ierr.IsAlreadyExists(err) {
		s.Logger.Debugw("cancellation trigger exists, updating in place",
			"subscription_id", sub.ID,
			"item_id", item.ID,
			"trigger_name", t.Name,
		)
		err = s.Scheduler.UpdateTrigger(ctx, t)
	}
	if err != nil {
		s.Logger.Errorw("failed to schedule item cancellation",
			"subscription_id", sub.ID,
			"item_id", item.ID,
			"trigger_name", t.Name,
			"error", err,
		)
		return err
	}

	s.Logger.Infow("scheduled item cancellation",
		"subscription_id", sub.ID,
		"item_id", item.ID,
		"trigger_name", t.Name,
		"fire_at", fireAt,
	)
	return nil
}

// release lets a redelivery retry after a failed attempt. Triggers are upserted,
// so rescheduling the items that already succeeded is harmless.
func (s *cancellationService) release(ctx context.Context, eventID string) {
	if err := s.Gate.Release(ctx, eventID); err != nil {
		s.Logger.Errorw("redelivery of this notification will be treated as a duplicate",
			"event_id", eventID,
			"error", err,
		)
	}
}

func cancelledDetail(sub *subscription.Snapshot) *events.SubscriptionCancelledDetail {
	return &events.SubscriptionCancelledDetail{
		SubscriptionID:    sub.ID,
		CustomerID:        sub.CustomerID,
		CancelAt:          sub.CancelAt,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
		Items: lo.Map(sub.Items, func(item subscription.Item, _ int) events.CancelledItem {
			return events.CancelledItem{
				ItemID:    item.ID,
				PriceID:   item.PriceID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				PeriodEnd: item.PeriodEnd,
			}
		}),
	}
}
