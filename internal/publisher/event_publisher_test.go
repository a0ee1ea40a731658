package publisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/events"
	"github.com/flexprice/lifecycle/internal/kafka"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/pubsub/memory"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishToMemory(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Event.PublishDestination = types.PublishToMemory
	log := logger.NewNoop()

	ps := memory.NewPubSub(log)
	defer ps.Close()

	pub, err := NewEventPublisher(cfg, log, nil, nil, ps)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := ps.Subscribe(ctx, cfg.Kafka.EventTopic)
	require.NoError(t, err)

	event := events.NewDomainEvent(events.EventSubscriptionCancelled, cfg.Event.Source, "sub_123",
		&events.SubscriptionCancelledDetail{SubscriptionID: "sub_123"})
	require.NoError(t, pub.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		var got events.DomainEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, events.EventSubscriptionCancelled, got.EventName)
		assert.Equal(t, "sub_123", got.Subject)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestPublishToKafkaUsesEventTopic(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Event.PublishDestination = types.PublishToKafka
	log := logger.NewNoop()

	broker := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	producer := kafka.NewProducerWithPublisher(broker)
	defer producer.Close()

	pub, err := NewEventPublisher(cfg, log, producer, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	messages, err := broker.Subscribe(ctx, cfg.Kafka.EventTopic)
	require.NoError(t, err)

	event := events.NewDomainEvent(events.EventSubscriptionCancelled, cfg.Event.Source, "sub_456",
		&events.SubscriptionCancelledDetail{SubscriptionID: "sub_456"})
	require.NoError(t, pub.Publish(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		var got events.DomainEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, "sub_456", got.Subject)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}

func TestNewEventPublisherRequiresDestination(t *testing.T) {
	cfg := config.GetDefaultConfig()
	log := logger.NewNoop()

	cfg.Event.PublishDestination = types.PublishToKafka
	_, err := NewEventPublisher(cfg, log, nil, nil, nil)
	assert.Error(t, err)

	cfg.Event.PublishDestination = types.PublishToDynamoDB
	_, err = NewEventPublisher(cfg, log, nil, nil, nil)
	assert.Error(t, err)

	cfg.Event.PublishDestination = types.PublishToMemory
	_, err = NewEventPublisher(cfg, log, nil, nil, nil)
	assert.Error(t, err)
}
