package usage

import (
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/shopspring/decimal"
)

// Message is one opaque record of a usage batch as delivered by the transport
type Message struct {
	// MessageID is assigned by the transport, unique per delivery and repeated on redelivery
	MessageID string `json:"message_id" validate:"required"`
	Body      string `json:"body"`
}

// Batch is the envelope used when a whole batch travels as a single kafka message
type Batch struct {
	Records []Message `json:"records" validate:"dive"`
}

// Record is the parsed body of a usage message
type Record struct {
	CustomerID        string                 `json:"customerId"`
	ResourcesAnalyzed *decimal.Decimal       `json:"resourcesAnalyzed"`
	SubscriptionType  types.SubscriptionTier `json:"subscriptionType"`
	MeteredPriceID    string                 `json:"meteredPriceId,omitempty"`
}

// HasRequiredFields reports whether the record carries a customer and a positive usage figure
func (r *Record) HasRequiredFields() bool {
	return r.CustomerID != "" && r.ResourcesAnalyzed != nil && r.ResourcesAnalyzed.IsPositive()
}

// MeterEvent is a single usage figure ready for submission to the metering API
type MeterEvent struct {
	EventName string       `json:"event_name"`
	Payload   MeterPayload `json:"payload"`
	// Identifier is the source message id, the provider deduplicates on it
	Identifier string `json:"identifier"`
	// Timestamp is the unix time the event was built at
	Timestamp int64 `json:"timestamp"`
}

// MeterPayload is the body of a meter event
type MeterPayload struct {
	CustomerID string          `json:"customer_id"`
	Value      decimal.Decimal `json:"value"`
	PriceID    string          `json:"price_id,omitempty"`
}

// Payload keys expected by the billing provider's meters
const (
	PayloadKeyCustomerID = "stripe_customer_id"
	PayloadKeyValue      = "value"
	PayloadKeyPriceID    = "price_id"
)

// ToMap renders the payload in the provider's string map form
func (p MeterPayload) ToMap() map[string]string {
	m := map[string]string{
		PayloadKeyCustomerID: p.CustomerID,
		PayloadKeyValue:      p.Value.String(),
	}
	if p.PriceID != "" {
		m[PayloadKeyPriceID] = p.PriceID
	}
	return m
}
