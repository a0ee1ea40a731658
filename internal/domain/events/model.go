package events

import (
	"time"

	"github.com/flexprice/lifecycle/internal/types"
)

// Domain event names published on the event bus
const (
	EventSubscriptionCancelled       = "subscription.cancelled"
	EventSubscriptionItemPeriodEnded = "subscription.item.period_ended"
)

// DomainEvent is published to the event bus after a side effect completed
type DomainEvent struct {
	ID        string    `json:"id"`
	EventName string    `json:"event_name"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
	// Subject is the entity the event is about, used as the partition key
	Subject string      `json:"subject"`
	Detail  interface{} `json:"detail"`
}

// NewDomainEvent creates a new event with a generated id
func NewDomainEvent(eventName, source, subject string, detail interface{}) *DomainEvent {
	return &DomainEvent{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DOMAIN_EVENT),
		EventName: eventName,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Subject:   subject,
		Detail:    detail,
	}
}

// SubscriptionCancelledDetail summarises a scheduled cancellation
type SubscriptionCancelledDetail struct {
	SubscriptionID    string          `json:"subscription_id"`
	CustomerID        string          `json:"customer_id"`
	CancelAt          *int64          `json:"cancel_at"`
	CancelAtPeriodEnd bool            `json:"cancel_at_period_end"`
	Items             []CancelledItem `json:"items"`
}

// CancelledItem is the flattened form of a subscription item
type CancelledItem struct {
	ItemID    string `json:"item_id"`
	PriceID   string `json:"price_id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
	PeriodEnd int64  `json:"period_end"`
}

// ItemPeriodEndedDetail is emitted when a scheduled cancellation trigger fires
type ItemPeriodEndedDetail struct {
	SubscriptionID    string `json:"subscription_id"`
	CustomerID        string `json:"customer_id"`
	ItemID            string `json:"item_id"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}
