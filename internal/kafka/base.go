package kafka

import (
	"crypto/tls"
	"time"

	"github.com/Shopify/sarama"
	"github.com/flexprice/lifecycle/internal/config"
)

// GetSaramaConfig layers the configured client id and SASL settings on top of base
func GetSaramaConfig(cfg *config.Configuration, base *sarama.Config) *sarama.Config {
	saramaConfig := base
	if saramaConfig == nil {
		saramaConfig = sarama.NewConfig()
	}
	saramaConfig.Version = sarama.V2_1_0_0

	// Configure client ID regardless of SASL
	if cfg.Kafka.ClientID != "" {
		saramaConfig.ClientID = cfg.Kafka.ClientID
	}

	// Start from the earliest message when the group has no committed offset
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = 5000 * time.Millisecond
	saramaConfig.Consumer.Offsets.Retry.Max = 3

	if !cfg.Kafka.UseSASL {
		return saramaConfig
	}

	saramaConfig.Net.SASL.Enable = true
	saramaConfig.Net.TLS.Enable = true
	saramaConfig.Net.TLS.Config = &tls.Config{}

	saramaConfig.Net.SASL.Mechanism = sarama.SASLMechanism(cfg.Kafka.SASLMechanism)
	saramaConfig.Net.SASL.User = cfg.Kafka.SASLUser
	saramaConfig.Net.SASL.Password = cfg.Kafka.SASLPassword

	return saramaConfig
}
