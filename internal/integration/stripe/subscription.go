package stripe

import (
	"encoding/json"

	"github.com/flexprice/lifecycle/internal/domain/subscription"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
	"github.com/stripe/stripe-go/v82"
)

var subscriptionEventTypes = []stripe.EventType{
	stripe.EventTypeCustomerSubscriptionCreated,
	stripe.EventTypeCustomerSubscriptionUpdated,
	stripe.EventTypeCustomerSubscriptionDeleted,
}

// IsSubscriptionEvent reports whether the event carries a subscription object
func IsSubscriptionEvent(event *stripe.Event) bool {
	return event != nil && lo.Contains(subscriptionEventTypes, event.Type)
}

// ParseEvent decodes an unsigned Stripe event notification, as delivered on the queue
func ParseEvent(payload []byte) (*stripe.Event, error) {
	var event stripe.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid Stripe event payload").
			Mark(ierr.ErrParse)
	}
	return &event, nil
}

// SnapshotFromEvent maps a customer.subscription.* event to a snapshot including the
// attributes that changed with this event
func SnapshotFromEvent(event *stripe.Event) (*subscription.Snapshot, error) {
	if event == nil || event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, ierr.NewError("stripe event has no data").
			WithHint("Subscription event must carry a subscription object").
			Mark(ierr.ErrParse)
	}

	var stripeSub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid subscription object in Stripe event").
			WithReportableDetails(map[string]interface{}{
				"event_id": event.ID,
			}).
			Mark(ierr.ErrParse)
	}

	previous, err := subscription.ParseChangeSet(event.Data.PreviousAttributes)
	if err != nil {
		return nil, err
	}

	snapshot := SnapshotFromSubscription(&stripeSub)
	snapshot.Previous = previous
	return snapshot, nil
}

// SnapshotFromSubscription maps a Stripe subscription to a snapshot with an empty change set
func SnapshotFromSubscription(sub *stripe.Subscription) *subscription.Snapshot {
	snapshot := &subscription.Snapshot{
		ID:                sub.ID,
		Status:            types.SubscriptionStatus(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}

	if sub.Customer != nil {
		snapshot.CustomerID = sub.Customer.ID
	}
	if sub.CancelAt > 0 {
		snapshot.CancelAt = lo.ToPtr(sub.CancelAt)
	}
	if sub.Items == nil {
		return snapshot
	}

	for _, item := range sub.Items.Data {
		if item == nil {
			continue
		}
		mapped := subscription.Item{
			ID:        item.ID,
			Quantity:  item.Quantity,
			PeriodEnd: item.CurrentPeriodEnd,
			Metadata:  item.Metadata,
		}
		if item.Price != nil {
			mapped.PriceID = item.Price.ID
			if item.Price.Product != nil {
				mapped.ProductID = item.Price.Product.ID
			}
		}
		snapshot.Items = append(snapshot.Items, mapped)
		// period end lives on the items; the subscription ends with its latest item
		snapshot.CurrentPeriodEnd = max(snapshot.CurrentPeriodEnd, item.CurrentPeriodEnd)
	}

	return snapshot
}
