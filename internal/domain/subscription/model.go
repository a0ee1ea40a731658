package subscription

import (
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
)

// Snapshot is the state of a subscription as carried by one change notification.
// It is built fresh per notification and never persisted.
type Snapshot struct {
	// ID is the billing provider's subscription identifier
	ID string `json:"id"`

	// CustomerID is the billing provider's customer identifier
	CustomerID string `json:"customer_id"`

	// Status is the subscription status after the change
	Status types.SubscriptionStatus `json:"status"`

	// CancelAtPeriodEnd is true when the subscription is set to end with the current period
	CancelAtPeriodEnd bool `json:"cancel_at_period_end"`

	// CancelAt is the unix time the subscription is set to cancel at, nil when not set
	CancelAt *int64 `json:"cancel_at,omitempty"`

	// CurrentPeriodEnd is the latest period end across the items
	CurrentPeriodEnd int64 `json:"current_period_end"`

	// Items are the billable line items in provider order
	Items []Item `json:"items"`

	// Previous holds the prior values of the fields changed by this notification
	Previous ChangeSet `json:"-"`
}

// Item is a billable line item of a subscription
type Item struct {
	ID        string            `json:"id"`
	PriceID   string            `json:"price_id"`
	ProductID string            `json:"product_id"`
	Quantity  int64             `json:"quantity"`
	PeriodEnd int64             `json:"period_end"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// IsCanceled reports whether the subscription already reached the canceled status
func (s *Snapshot) IsCanceled() bool {
	return s.Status == types.SubscriptionStatusCanceled
}

// ItemIDs returns the ids of all items in order
func (s *Snapshot) ItemIDs() []string {
	return lo.Map(s.Items, func(item Item, _ int) string {
		return item.ID
	})
}

// Validate checks the fields every downstream action depends on
func (s *Snapshot) Validate() error {
	if s == nil {
		return ierr.NewError("subscription snapshot is nil").
			WithHint("A subscription is required").
			Mark(ierr.ErrValidation)
	}
	if s.ID == "" {
		return ierr.NewError("subscription id is required").
			WithHint("Subscription notification is missing the subscription id").
			Mark(ierr.ErrValidation)
	}
	if s.CustomerID == "" {
		return ierr.NewError("customer id is required").
			WithHint("Subscription notification is missing the customer id").
			WithReportableDetails(map[string]any{"subscription_id": s.ID}).
			Mark(ierr.ErrValidation)
	}
	for _, item := range s.Items {
		if item.ID == "" {
			return ierr.NewError("subscription item id is required").
				WithReportableDetails(map[string]any{"subscription_id": s.ID}).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}
