package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/sentry"
)

// Router manages all message routing
type Router struct {
	router *message.Router
	logger *logger.Logger
	sentry *sentry.Service
	config *config.KafkaConfig
}

// NewRouter creates a new message router. Messages whose handler keeps failing
// after the retries are moved to the dead letter topic through dlq.
func NewRouter(cfg *config.Configuration, logger *logger.Logger, sentry *sentry.Service, dlq message.Publisher) (*Router, error) {
	router, err := message.NewRouter(
		message.RouterConfig{},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, err
	}

	poisonQueue, err := middleware.PoisonQueue(dlq, cfg.Kafka.DLQTopic)
	if err != nil {
		return nil, err
	}

	retry := newRetryMiddleware(cfg, logger)

	// Add middleware in correct order
	router.AddMiddleware(
		poisonQueue,
		middleware.Recoverer,     // Recover from panics
		middleware.CorrelationID, // Add correlation IDs
		retry,
	)

	return &Router{
		router: router,
		logger: logger,
		sentry: sentry,
		config: &cfg.Kafka,
	}, nil
}

// AddNoPublishHandler adds a handler that doesn't publish messages
func (r *Router) AddNoPublishHandler(
	handlerName string,
	topicName string,
	subscriber message.Subscriber,
	handlerFunc func(msg *message.Message) error,
	middlewares ...message.HandlerMiddleware,
) {
	handler := r.router.AddNoPublisherHandler(
		handlerName,
		topicName,
		subscriber,
		func(msg *message.Message) error {
			span, ctx := r.sentry.StartKafkaConsumerSpan(msg.Context(), topicName)
			if span != nil {
				defer span.Finish()
				msg.SetContext(ctx)
			}

			err := handlerFunc(msg)
			if err != nil {
				r.sentry.CaptureException(err)
				r.logger.Errorw("handler failed",
					"error", err,
					"handler", handlerName,
					"topic", topicName,
					"correlation_id", middleware.MessageCorrelationID(msg),
					"message_uuid", msg.UUID,
				)
			}
			return err
		},
	)

	for _, middleware := range middlewares {
		handler.AddMiddleware(middleware)
	}
}

// Running is closed once every handler is running
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Run starts the router and blocks until it is closed
func (r *Router) Run() error {
	r.logger.Info("starting router")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return r.router.Run(ctx)
}

// Close gracefully shuts down the router
func (r *Router) Close() error {
	r.logger.Info("closing router")
	return r.router.Close()
}

func newRetryMiddleware(cfg *config.Configuration, logger *logger.Logger) message.HandlerMiddleware {
	retry := middleware.Retry{
		MaxRetries:          cfg.Kafka.MaxRetries,
		InitialInterval:     cfg.Kafka.InitialInterval,
		MaxInterval:         cfg.Kafka.MaxInterval,
		Multiplier:          cfg.Kafka.Multiplier,
		MaxElapsedTime:      cfg.Kafka.MaxElapsedTime,
		RandomizationFactor: 0.5,
		Logger:              watermill.NewStdLogger(false, false),
		OnRetryHook: func(retryNum int, delay time.Duration) {
			logger.Infow("retrying message",
				"retry_number", retryNum,
				"max_retries", cfg.Kafka.MaxRetries,
				"delay", delay,
			)
		},
	}

	return func(h message.HandlerFunc) message.HandlerFunc {
		retrying := retry.Middleware(h)
		return func(msg *message.Message) ([]*message.Message, error) {
			// one attempt first, permanent failures skip the backoff loop
			msgs, err := h(msg)
			if err == nil || !shouldRetry(logger, err) {
				return msgs, err
			}
			return retrying(msg)
		}
	}
}
