package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/lifecycle/internal/domain/usage"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/idempotency"
	pubsubRouter "github.com/flexprice/lifecycle/internal/pubsub/router"
	"github.com/flexprice/lifecycle/internal/validator"
)

// UsageService turns usage batches into metering submissions
type UsageService interface {
	// Process submits one meter event per valid record. Malformed and incomplete
	// records are skipped. Submission failures are reported together as a
	// BatchError marked ErrPartialSend after every submission settled.
	Process(ctx context.Context, batch []usage.Message) error

	// RegisterHandler consumes usage batch envelopes from the usage topic
	RegisterHandler(router *pubsubRouter.Router, subscriber message.Subscriber)
}

type usageService struct {
	ServiceParams
	keys *idempotency.Generator
	now  func() time.Time
}

// NewUsageService creates a new usage batch processor
func NewUsageService(params ServiceParams) UsageService {
	return &usageService{
		ServiceParams: params,
		keys:          idempotency.NewGenerator(),
		now:           time.Now,
	}
}

type meterSubmission struct {
	event *usage.MeterEvent
	key   string
}

func (s *usageService) Process(ctx context.Context, batch []usage.Message) error {
	timestamp := s.now().Unix()

	submissions := make([]meterSubmission, 0, len(batch))
	for _, msg := range batch {
		event, ok := s.buildMeterEvent(msg, timestamp)
		if !ok {
			continue
		}
		submissions = append(submissions, meterSubmission{
			event: event,
			key:   s.keys.MeterEventKey(event.Identifier, event.Timestamp),
		})
	}

	errs := fanOut(submissions, s.Config.Usage.MaxConcurrentSubmissions, func(sub meterSubmission) error {
		if err := s.Metering.Submit(ctx, sub.event, sub.key); err != nil {
			s.Logger.Errorw("failed to submit meter event",
				"identifier", sub.event.Identifier,
				"customer_id", sub.event.Payload.CustomerID,
				"event_name", sub.event.EventName,
				"error", err,
			)
			return err
		}
		return nil
	})

	if err := ierr.NewBatchError("submit meter events", len(submissions), errs, ierr.ErrPartialSend); err != nil {
		s.Logger.Errorw("usage batch partially failed",
			"records", len(batch),
			"submitted", len(submissions),
			"failed", len(errs),
			"error", err,
		)
		return err
	}

	s.Logger.Infow("processed usage batch",
		"records", len(batch),
		"submitted", len(submissions),
		"skipped", len(batch)-len(submissions),
	)
	return nil
}

// buildMeterEvent parses and validates one record. It logs and reports false for
// records that produce no meter event.
func (s *usageService) buildMeterEvent(msg usage.Message, timestamp int64) (*usage.MeterEvent, bool) {
	var record usage.Record
	if err := json.Unmarshal([]byte(msg.Body), &record); err != nil {
		s.Logger.Errorw("failed to parse usage record, skipping",
			"message_id", msg.MessageID,
			"error", err,
		)
		return nil, false
	}

	if !record.HasRequiredFields() {
		s.Logger.Warnw("usage record has no customer id or no positive resources analyzed, skipping",
			"message_id", msg.MessageID,
			"customer_id", record.CustomerID,
		)
		return nil, false
	}

	eventName, priceID := s.Config.Stripe.StandardEventName, record.MeteredPriceID
	if record.SubscriptionType.IsEnterpriseBilled() {
		eventName, priceID = s.Config.Stripe.EnterpriseEventName, s.Config.Stripe.EnterprisePriceID
	}

	return &usage.MeterEvent{
		EventName: eventName,
		Payload: usage.MeterPayload{
			CustomerID: record.CustomerID,
			Value:      *record.ResourcesAnalyzed,
			PriceID:    priceID,
		},
		Identifier: msg.MessageID,
		Timestamp:  timestamp,
	}, true
}

// RegisterHandler consumes usage batch envelopes from the usage topic
func (s *usageService) RegisterHandler(router *pubsubRouter.Router, subscriber message.Subscriber) {
	router.AddNoPublishHandler(
		"usage_batch_handler",
		s.Config.Kafka.UsageTopic,
		subscriber,
		s.processMessage,
	)

	s.Logger.Infow("registered usage batch handler",
		"topic", s.Config.Kafka.UsageTopic,
	)
}

func (s *usageService) processMessage(msg *message.Message) error {
	var batch usage.Batch
	if err := json.Unmarshal(msg.Payload, &batch); err != nil {
		s.Logger.Errorw("failed to unmarshal usage batch",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return ierr.WithError(err).
			WithHint("Usage batch envelope is malformed").
			Mark(ierr.ErrParse)
	}

	if err := validator.ValidateRequest(&batch); err != nil {
		return err
	}

	s.Logger.Debugw("processing usage batch",
		"message_uuid", msg.UUID,
		"records", len(batch.Records),
	)

	return s.Process(msg.Context(), batch.Records)
}
