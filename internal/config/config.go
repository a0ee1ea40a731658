package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/lifecycle/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment  DeploymentConfig  `validate:"required"`
	Server      ServerConfig      `validate:"required"`
	Logging     LoggingConfig     `validate:"required"`
	Kafka       KafkaConfig       `validate:"required"`
	Temporal    TemporalConfig    `validate:"required"`
	Stripe      StripeConfig      `validate:"required"`
	Usage       UsageConfig       `validate:"required"`
	Idempotency IdempotencyConfig `validate:"required"`
	Redis       RedisConfig
	DynamoDB    DynamoDBConfig
	Event       EventConfig `validate:"required"`
	Sentry      SentryConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type KafkaConfig struct {
	Brokers       []string `validate:"required"`
	ConsumerGroup string   `mapstructure:"consumer_group" validate:"required"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
	ClientID      string   `mapstructure:"client_id"`
	// SubscriptionTopic carries billing provider subscription change notifications
	SubscriptionTopic string `mapstructure:"subscription_topic" validate:"required"`
	// UsageTopic carries usage record batches
	UsageTopic string `mapstructure:"usage_topic" validate:"required"`
	// EventTopic receives published domain events
	EventTopic string `mapstructure:"event_topic" validate:"required"`
	// DLQTopic receives messages that exhausted their retries
	DLQTopic string `mapstructure:"dlq_topic"`
	// Retry settings for the message router
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

type TemporalConfig struct {
	Address   string `validate:"required"`
	Namespace string `validate:"required"`
	TaskQueue string `mapstructure:"task_queue" validate:"required"`
	APIKey    string `mapstructure:"api_key"`
	TLS       bool
}

// StripeConfig holds the billing provider settings
type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key" validate:"required"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	// StandardEventName is the meter event name for PRO and unrecognised tiers
	StandardEventName string `mapstructure:"standard_event_name" validate:"required"`
	// EnterpriseEventName is the meter event name for TEAM and ENTERPRISE tiers
	EnterpriseEventName string `mapstructure:"enterprise_event_name" validate:"required"`
	// EnterprisePriceID is attached to every TEAM and ENTERPRISE meter event
	EnterprisePriceID string `mapstructure:"enterprise_price_id" validate:"required"`
}

type UsageConfig struct {
	// MaxConcurrentSubmissions caps in flight metering calls per batch, 0 means unbounded
	MaxConcurrentSubmissions int `mapstructure:"max_concurrent_submissions"`
}

type IdempotencyConfig struct {
	Backend types.IdempotencyBackend `validate:"required,oneof=redis dynamodb memory"`
	TTL     time.Duration
}

type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string `mapstructure:"key_prefix"`
}

// DynamoDBConfig holds configuration for DynamoDB
type DynamoDBConfig struct {
	InUse                bool   `mapstructure:"in_use"`
	Region               string `mapstructure:"region"`
	EventTableName       string `mapstructure:"event_table_name"`
	IdempotencyTableName string `mapstructure:"idempotency_table_name"`
}

// EventConfig holds configuration for domain event publishing
type EventConfig struct {
	PublishDestination types.PublishDestination `mapstructure:"publish_destination" validate:"required"`
	Source             string                   `mapstructure:"source"`
}

type SentryConfig struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/lifecycle")

	// Set up environment variables support
	v.SetEnvPrefix("LIFECYCLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", string(types.ModeLocal))
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", string(types.LogLevelInfo))
	v.SetDefault("kafka.consumer_group", "lifecycle")
	v.SetDefault("kafka.subscription_topic", "subscription_updates")
	v.SetDefault("kafka.usage_topic", "usage_batches")
	v.SetDefault("kafka.event_topic", "domain_events")
	v.SetDefault("kafka.dlq_topic", "lifecycle_dlq")
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.initial_interval", time.Second)
	v.SetDefault("kafka.max_interval", 10*time.Second)
	v.SetDefault("kafka.multiplier", 2.0)
	v.SetDefault("kafka.max_elapsed_time", 2*time.Minute)
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "subscription-lifecycle")
	v.SetDefault("stripe.standard_event_name", "resources_analyzed")
	v.SetDefault("stripe.enterprise_event_name", "enterprise_resources_analyzed")
	v.SetDefault("idempotency.backend", string(types.IdempotencyBackendMemory))
	v.SetDefault("idempotency.ttl", 7*24*time.Hour)
	v.SetDefault("redis.key_prefix", "lifecycle:idempotency:")
	v.SetDefault("event.publish_destination", string(types.PublishToKafka))
	v.SetDefault("event.source", "subscription-lifecycle")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Kafka: KafkaConfig{
			Brokers:           []string{"localhost:29092"},
			ConsumerGroup:     "lifecycle",
			SubscriptionTopic: "subscription_updates",
			UsageTopic:        "usage_batches",
			EventTopic:        "domain_events",
			DLQTopic:          "lifecycle_dlq",
			MaxRetries:        3,
			InitialInterval:   time.Second,
			MaxInterval:       10 * time.Second,
			Multiplier:        2.0,
			MaxElapsedTime:    2 * time.Minute,
		},
		Temporal: TemporalConfig{
			Address:   "localhost:7233",
			Namespace: "default",
			TaskQueue: "subscription-lifecycle",
		},
		Stripe: StripeConfig{
			SecretKey:           "sk_test_local",
			StandardEventName:   "resources_analyzed",
			EnterpriseEventName: "enterprise_resources_analyzed",
			EnterprisePriceID:   "price_enterprise_local",
		},
		Idempotency: IdempotencyConfig{
			Backend: types.IdempotencyBackendMemory,
			TTL:     24 * time.Hour,
		},
		Event: EventConfig{
			PublishDestination: types.PublishToMemory,
			Source:             "subscription-lifecycle",
		},
	}
}
