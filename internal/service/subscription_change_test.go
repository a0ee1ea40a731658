package service

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/lifecycle/internal/classifier"
	"github.com/flexprice/lifecycle/internal/domain/events"
	"github.com/flexprice/lifecycle/internal/domain/subscription"
	"github.com/flexprice/lifecycle/internal/domain/trigger"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	stripeIntegration "github.com/flexprice/lifecycle/internal/integration/stripe"
	"github.com/flexprice/lifecycle/internal/testutil"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type SubscriptionChangeServiceSuite struct {
	testutil.BaseServiceTestSuite
	service *subscriptionChangeService
}

func TestSubscriptionChangeService(t *testing.T) {
	suite.Run(t, new(SubscriptionChangeServiceSuite))
}

func (s *SubscriptionChangeServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewSubscriptionChangeService(newTestServiceParams(&s.BaseServiceTestSuite)).(*subscriptionChangeService)
	s.service.cancellation.(*cancellationService).now = s.GetNow
}

// stripeEventJSON renders a customer.subscription.* event for the given subscription fields
func (s *SubscriptionChangeServiceSuite) stripeEventJSON(eventType string, cancelAtPeriodEnd bool, cancelAt *int64, previous map[string]interface{}) []byte {
	periodEnd := s.GetNow().Add(24 * time.Hour).Unix()
	object := map[string]interface{}{
		"id":                   "sub_123",
		"object":               "subscription",
		"customer":             "cus_123",
		"status":               "active",
		"cancel_at_period_end": cancelAtPeriodEnd,
		"items": map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{"id": "si_1", "object": "subscription_item", "quantity": 1, "current_period_end": periodEnd},
				{"id": "si_2", "object": "subscription_item", "quantity": 1, "current_period_end": periodEnd},
			},
		},
	}
	if cancelAt != nil {
		object["cancel_at"] = *cancelAt
	}

	raw, err := json.Marshal(map[string]interface{}{
		"id":     "evt_123",
		"object": "event",
		"type":   eventType,
		"data": map[string]interface{}{
			"object":              object,
			"previous_attributes": previous,
		},
	})
	s.Require().NoError(err)
	return raw
}

func (s *SubscriptionChangeServiceSuite) handle(payload []byte) (classifier.Verdict, error) {
	event, err := stripeIntegration.ParseEvent(payload)
	s.Require().NoError(err)
	return s.service.HandleStripeEvent(s.GetContext(), event)
}

func (s *SubscriptionChangeServiceSuite) TestOtherChangeHasNoSideEffects() {
	verdict, err := s.handle(s.stripeEventJSON("customer.subscription.updated", false, nil,
		map[string]interface{}{"current_period_end": 1700000000}))

	s.Require().NoError(err)
	s.Equal(classifier.OtherChange, verdict)
	s.Empty(s.GetScheduler().Calls())
	s.Empty(s.GetPublisher().GetEvents())
}

func (s *SubscriptionChangeServiceSuite) TestCancelAtPeriodEndSchedulesTriggers() {
	verdict, err := s.handle(s.stripeEventJSON("customer.subscription.updated", true, nil,
		map[string]interface{}{"cancel_at_period_end": false}))

	s.Require().NoError(err)
	s.Equal(classifier.CancellationRequested, verdict)
	s.Len(s.GetScheduler().CallsByOp(testutil.SchedulerOpCreate), 2)

	_, ok := s.GetScheduler().GetTrigger(trigger.Name("sub_123", "si_1"))
	s.True(ok)

	published := s.GetPublisher().GetEventsByName(events.EventSubscriptionCancelled)
	s.Len(published, 1)
}

func (s *SubscriptionChangeServiceSuite) TestClearedCancelAtRevertsCancellation() {
	s.GetScheduler().Seed(&trigger.Trigger{Name: trigger.Name("sub_123", "si_1"), FireAt: s.GetNow().Add(time.Hour)})
	s.GetScheduler().Seed(&trigger.Trigger{Name: trigger.Name("sub_123", "si_2"), FireAt: s.GetNow().Add(time.Hour)})

	verdict, err := s.handle(s.stripeEventJSON("customer.subscription.updated", false, nil,
		map[string]interface{}{"cancel_at": 1234567890}))

	s.Require().NoError(err)
	s.Equal(classifier.CancellationReverted, verdict)
	s.Len(s.GetScheduler().CallsByOp(testutil.SchedulerOpDelete), 2)
	s.Empty(s.GetScheduler().CallsByOp(testutil.SchedulerOpCreate))
	s.Equal(0, s.GetScheduler().Triggers())
	s.Empty(s.GetPublisher().GetEvents())
}

func (s *SubscriptionChangeServiceSuite) TestCancellationWinsOverReversion() {
	verdict, err := s.handle(s.stripeEventJSON("customer.subscription.updated", true, nil,
		map[string]interface{}{"cancel_at": 1234567890}))

	s.Require().NoError(err)
	s.Equal(classifier.CancellationRequested, verdict)
	s.Empty(s.GetScheduler().CallsByOp(testutil.SchedulerOpDelete))
}

func (s *SubscriptionChangeServiceSuite) TestCancelAfterRevertSchedulesAgain() {
	verdict, err := s.handle(s.stripeEventJSON("customer.subscription.updated", true, nil,
		map[string]interface{}{"cancel_at_period_end": false}))
	s.Require().NoError(err)
	s.Equal(classifier.CancellationRequested, verdict)
	s.Equal(2, s.GetScheduler().Triggers())

	verdict, err = s.handle(s.stripeEventJSON("customer.subscription.updated", false, nil,
		map[string]interface{}{"cancel_at_period_end": true}))
	s.Require().NoError(err)
	s.Equal(classifier.CancellationReverted, verdict)
	s.Equal(0, s.GetScheduler().Triggers())

	verdict, err = s.handle(s.stripeEventJSON("customer.subscription.updated", true, nil,
		map[string]interface{}{"cancel_at_period_end": false}))
	s.Require().NoError(err)
	s.Equal(classifier.CancellationRequested, verdict)
	s.Equal(2, s.GetScheduler().Triggers())

	_, ok := s.GetScheduler().GetTrigger(trigger.Name("sub_123", "si_1"))
	s.True(ok)
	_, ok = s.GetScheduler().GetTrigger(trigger.Name("sub_123", "si_2"))
	s.True(ok)

	s.Len(s.GetPublisher().GetEventsByName(events.EventSubscriptionCancelled), 2)
}

func (s *SubscriptionChangeServiceSuite) TestNonSubscriptionEventsAreIgnored() {
	verdict, err := s.handle(s.stripeEventJSON("invoice.paid", true, nil, nil))

	s.Require().NoError(err)
	s.Empty(verdict)
	s.Empty(s.GetScheduler().Calls())
}

func (s *SubscriptionChangeServiceSuite) TestHandleNotificationRejectsInvalidSnapshot() {
	_, err := s.service.HandleNotification(s.GetContext(), &subscription.Snapshot{ID: "sub_123"})
	s.True(ierr.IsValidation(err))
	s.Empty(s.GetScheduler().Calls())
}

func (s *SubscriptionChangeServiceSuite) TestCanceledStatusSchedulesTriggers() {
	sub := testSubscription("sub_canceled", s.GetNow().Add(time.Hour))
	sub.CancelAtPeriodEnd = false
	sub.Status = types.SubscriptionStatusCanceled
	sub.CancelAt = lo.ToPtr(s.GetNow().Unix())

	verdict, err := s.service.HandleNotification(s.GetContext(), sub)
	s.Require().NoError(err)
	s.Equal(classifier.CancellationRequested, verdict)
	s.Equal(1, s.GetScheduler().Triggers())
}

func (s *SubscriptionChangeServiceSuite) TestProcessMessageAcknowledgesMalformedPayload() {
	s.NoError(s.service.processMessage(message.NewMessage("uuid-1", []byte("{not json"))))
	s.Empty(s.GetScheduler().Calls())
}

func (s *SubscriptionChangeServiceSuite) TestProcessMessageRetriesDependencyFailures() {
	s.GetScheduler().FailOn(trigger.Name("sub_123", "si_1"),
		ierr.NewError("scheduler unavailable").Mark(ierr.ErrDependency))

	err := s.service.processMessage(message.NewMessage("uuid-1",
		s.stripeEventJSON("customer.subscription.updated", true, nil, nil)))
	s.Require().Error(err)
	s.True(ierr.Is(err, ierr.ErrBatchScheduling))
}

func (s *SubscriptionChangeServiceSuite) TestProcessMessageHandlesNotification() {
	err := s.service.processMessage(message.NewMessage("uuid-1",
		s.stripeEventJSON("customer.subscription.updated", true, nil, nil)))
	s.Require().NoError(err)
	s.Len(s.GetScheduler().CallsByOp(testutil.SchedulerOpCreate), 2)
	s.Len(s.GetPublisher().GetEventsByName(events.EventSubscriptionCancelled), 1)
}
