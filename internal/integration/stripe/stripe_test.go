package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/usage"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

type fakeMeterEvents struct {
	mu     sync.Mutex
	params []*stripe.BillingMeterEventCreateParams
	err    error
}

func (f *fakeMeterEvents) Create(_ context.Context, params *stripe.BillingMeterEventCreateParams) (*stripe.BillingMeterEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.BillingMeterEvent{
		EventName:  stripe.StringValue(params.EventName),
		Identifier: stripe.StringValue(params.Identifier),
	}, nil
}

type StripeIntegrationSuite struct {
	suite.Suite
	events *fakeMeterEvents
	meter  *MeterClient
}

func TestStripeIntegration(t *testing.T) {
	suite.Run(t, new(StripeIntegrationSuite))
}

func (s *StripeIntegrationSuite) SetupTest() {
	s.events = &fakeMeterEvents{}
	s.meter = NewMeterClientWithCreator(s.events, logger.NewNoop())
}

func (s *StripeIntegrationSuite) TestSubmitBuildsParams() {
	event := &usage.MeterEvent{
		EventName: "resources_analyzed",
		Payload: usage.MeterPayload{
			CustomerID: "cus_123",
			Value:      decimal.RequireFromString("42.5"),
			PriceID:    "price_std",
		},
		Identifier: "msg-1",
		Timestamp:  1700000000,
	}

	s.Require().NoError(s.meter.Submit(context.Background(), event, "key-1"))
	s.Require().Len(s.events.params, 1)

	params := s.events.params[0]
	s.Equal("resources_analyzed", stripe.StringValue(params.EventName))
	s.Equal("msg-1", stripe.StringValue(params.Identifier))
	s.Equal(int64(1700000000), stripe.Int64Value(params.Timestamp))
	s.Equal("key-1", stripe.StringValue(params.IdempotencyKey))
	s.Equal(map[string]string{
		"stripe_customer_id": "cus_123",
		"value":              "42.5",
		"price_id":           "price_std",
	}, params.Payload)
}

func (s *StripeIntegrationSuite) TestSubmitFailureIsDependencyError() {
	s.events.err = &stripe.Error{HTTPStatusCode: 500, Msg: "boom"}

	err := s.meter.Submit(context.Background(), &usage.MeterEvent{Identifier: "msg-1"}, "key-1")
	s.Require().Error(err)
	s.True(ierr.IsDependency(err))
}

func (s *StripeIntegrationSuite) TestSubmitNilEvent() {
	err := s.meter.Submit(context.Background(), nil, "key")
	s.True(ierr.IsValidation(err))
	s.Empty(s.events.params)
}

func (s *StripeIntegrationSuite) TestIsRetryable() {
	s.True(IsRetryable(errors.New("connection reset")))
	s.True(IsRetryable(&stripe.Error{HTTPStatusCode: 429}))
	s.True(IsRetryable(&stripe.Error{HTTPStatusCode: 503}))
	s.False(IsRetryable(&stripe.Error{HTTPStatusCode: 400}))
}

const subscriptionJSON = `{
	"id": "sub_123",
	"object": "subscription",
	"customer": "cus_123",
	"status": "active",
	"cancel_at_period_end": true,
	"cancel_at": 1893456000,
	"items": {
		"object": "list",
		"data": [
			{"id": "si_1", "object": "subscription_item", "quantity": 2, "current_period_end": 1893456000,
			 "price": {"id": "price_a", "object": "price", "product": "prod_a"}},
			{"id": "si_2", "object": "subscription_item", "quantity": 1, "current_period_end": 1893542400,
			 "price": {"id": "price_b", "object": "price", "product": "prod_b"}}
		]
	}
}`

func (s *StripeIntegrationSuite) eventJSON(previous map[string]interface{}) []byte {
	body := map[string]interface{}{
		"id":     "evt_1",
		"object": "event",
		"type":   "customer.subscription.updated",
		"data": map[string]interface{}{
			"object":              json.RawMessage(subscriptionJSON),
			"previous_attributes": previous,
		},
	}
	raw, err := json.Marshal(body)
	s.Require().NoError(err)
	return raw
}

func (s *StripeIntegrationSuite) TestSnapshotFromEvent() {
	event, err := ParseEvent(s.eventJSON(map[string]interface{}{
		"cancel_at_period_end": false,
		"cancel_at":            nil,
	}))
	s.Require().NoError(err)
	s.True(IsSubscriptionEvent(event))

	snapshot, err := SnapshotFromEvent(event)
	s.Require().NoError(err)

	s.Equal("sub_123", snapshot.ID)
	s.Equal("cus_123", snapshot.CustomerID)
	s.Equal(types.SubscriptionStatusActive, snapshot.Status)
	s.True(snapshot.CancelAtPeriodEnd)
	s.Require().NotNil(snapshot.CancelAt)
	s.Equal(int64(1893456000), *snapshot.CancelAt)
	s.Equal(int64(1893542400), snapshot.CurrentPeriodEnd)

	s.Require().Len(snapshot.Items, 2)
	s.Equal("si_1", snapshot.Items[0].ID)
	s.Equal("price_a", snapshot.Items[0].PriceID)
	s.Equal("prod_a", snapshot.Items[0].ProductID)
	s.Equal(int64(2), snapshot.Items[0].Quantity)

	s.True(snapshot.Previous.CancelAtPeriodEnd.Present)
	s.False(snapshot.Previous.CancelAtPeriodEnd.Value)
	s.True(snapshot.Previous.CancelAt.Present)
	s.Nil(snapshot.Previous.CancelAt.Value)
	s.False(snapshot.Previous.Status.Present)
}

func (s *StripeIntegrationSuite) TestSnapshotFromEventErrors() {
	_, err := ParseEvent([]byte("{not json"))
	s.True(ierr.IsParse(err))

	_, err = SnapshotFromEvent(&stripe.Event{ID: "evt_empty"})
	s.True(ierr.IsParse(err))

	event, err := ParseEvent(s.eventJSON(map[string]interface{}{"cancel_at_period_end": "yes"}))
	s.Require().NoError(err)
	_, err = SnapshotFromEvent(event)
	s.True(ierr.IsParse(err))
}

func (s *StripeIntegrationSuite) TestParseWebhookEvent() {
	cfg := config.GetDefaultConfig()
	cfg.Stripe.WebhookSecret = "whsec_test"
	client := NewClient(cfg, logger.NewNoop())

	payload := s.eventJSON(nil)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})

	event, err := client.ParseWebhookEvent(signed.Payload, signed.Header)
	s.Require().NoError(err)
	s.Equal("evt_1", event.ID)

	_, err = client.ParseWebhookEvent(payload, "t=1,v1=bad")
	s.True(ierr.IsValidation(err))

	_, err = client.ParseWebhookEvent(payload, "")
	s.True(ierr.IsValidation(err))
}
