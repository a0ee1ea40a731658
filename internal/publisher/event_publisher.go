package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/events"
	"github.com/flexprice/lifecycle/internal/dynamodb"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/kafka"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/pubsub/memory"
	"github.com/flexprice/lifecycle/internal/types"
)

// EventPublisher publishes domain events to the event bus
type EventPublisher interface {
	Publish(ctx context.Context, event *events.DomainEvent) error
}

type eventPublisher struct {
	kafkaPublisher  *kafka.EventPublisher
	dynamoPublisher *dynamodb.EventPublisher
	memoryPubSub    *memory.PubSub
	logger          *logger.Logger
	config          *config.Configuration
}

// NewEventPublisher creates a new publisher for the configured destination
func NewEventPublisher(
	cfg *config.Configuration,
	logger *logger.Logger,
	kafkaProducer *kafka.Producer,
	dynamoClient *dynamodb.Client,
	memoryPubSub *memory.PubSub,
) (EventPublisher, error) {
	publisher := &eventPublisher{
		logger: logger,
		config: cfg,
	}

	dest := cfg.Event.PublishDestination

	if dest == types.PublishToKafka || dest == types.PublishToAll {
		if kafkaProducer == nil {
			return nil, fmt.Errorf("kafka producer is not initialized but it is one of the publish destinations")
		}
		publisher.kafkaPublisher = kafka.NewEventPublisher(kafkaProducer, cfg, logger)
	}

	if dest == types.PublishToDynamoDB || dest == types.PublishToAll {
		if dynamoClient == nil {
			return nil, fmt.Errorf("dynamodb client is not initialized but it is one of the publish destinations")
		}
		publisher.dynamoPublisher = dynamodb.NewEventPublisher(dynamoClient, cfg, logger)
	}

	if dest == types.PublishToMemory {
		if memoryPubSub == nil {
			return nil, fmt.Errorf("memory pubsub is not initialized but it is the publish destination")
		}
		publisher.memoryPubSub = memoryPubSub
	}

	if publisher.kafkaPublisher == nil && publisher.dynamoPublisher == nil && publisher.memoryPubSub == nil {
		return nil, fmt.Errorf("no publishers configured for destination: %s", dest)
	}

	return publisher, nil
}

func (s *eventPublisher) Publish(ctx context.Context, event *events.DomainEvent) error {
	s.logger.Debugw("publishing event",
		"event_id", event.ID,
		"event_name", event.EventName,
		"destination", s.config.Event.PublishDestination,
	)

	switch s.config.Event.PublishDestination {
	case types.PublishToKafka:
		return s.kafkaPublisher.Publish(ctx, event)
	case types.PublishToDynamoDB:
		return s.wrap(s.dynamoPublisher.Publish(ctx, event))
	case types.PublishToMemory:
		return s.publishToMemory(ctx, event)
	case types.PublishToAll:
		// Publish to both and fail if either fails
		var kafkaErr, dynamoErr error
		if err := s.kafkaPublisher.Publish(ctx, event); err != nil {
			kafkaErr = fmt.Errorf("failed to publish to kafka: %w", err)
		}

		if err := s.dynamoPublisher.Publish(ctx, event); err != nil {
			dynamoErr = fmt.Errorf("failed to publish to dynamodb: %w", err)
		}

		if kafkaErr != nil && dynamoErr != nil {
			return s.wrap(fmt.Errorf("failed to publish to both kafka and dynamodb: %v, %v", kafkaErr, dynamoErr))
		} else if kafkaErr != nil {
			return s.wrap(kafkaErr)
		} else if dynamoErr != nil {
			return s.wrap(dynamoErr)
		}

		return nil
	default:
		return fmt.Errorf("unknown publish destination: %s", s.config.Event.PublishDestination)
	}
}

func (s *eventPublisher) publishToMemory(ctx context.Context, event *events.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to marshal event").
			Mark(ierr.ErrValidation)
	}
	return s.wrap(s.memoryPubSub.Publish(ctx, s.config.Kafka.EventTopic, message.NewMessage(event.ID, payload)))
}

func (s *eventPublisher) wrap(err error) error {
	if err == nil {
		return nil
	}
	return ierr.WithError(err).
		WithHint("Failed to publish domain event").
		Mark(ierr.ErrDependency)
}
