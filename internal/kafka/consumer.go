package kafka

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/lifecycle/internal/config"
)

// NewSubscriber creates the consumer group subscriber used by the message router
func NewSubscriber(cfg *config.Configuration) (message.Subscriber, error) {
	return kafka.NewSubscriber(
		kafka.SubscriberConfig{
			Brokers:               cfg.Kafka.Brokers,
			ConsumerGroup:         cfg.Kafka.ConsumerGroup,
			Unmarshaler:           kafka.DefaultMarshaler{},
			OverwriteSaramaConfig: GetSaramaConfig(cfg, kafka.DefaultSaramaSubscriberConfig()),
		},
		watermill.NewStdLogger(false, false),
	)
}
