package kafka

import (
	"context"
	"encoding/json"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/events"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
)

type EventPublisher struct {
	producer *Producer
	logger   *logger.Logger
	config   *config.KafkaConfig
}

func NewEventPublisher(producer *Producer, cfg *config.Configuration, logger *logger.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		logger:   logger,
		config:   &cfg.Kafka,
	}
}

func (p *EventPublisher) Publish(ctx context.Context, event *events.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal event").
			Mark(ierr.ErrValidation)
	}

	p.logger.Debugw("publishing event to kafka",
		"event_id", event.ID,
		"event_name", event.EventName,
		"subject", event.Subject,
		"topic", p.config.EventTopic,
	)

	if err := p.producer.PublishWithID(p.config.EventTopic, payload, event.ID); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to publish event").
			Mark(ierr.ErrDependency)
	}
	return nil
}
