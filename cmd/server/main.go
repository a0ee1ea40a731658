package main

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/lifecycle/internal/api"
	v1 "github.com/flexprice/lifecycle/internal/api/v1"
	"github.com/flexprice/lifecycle/internal/cache"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/usage"
	"github.com/flexprice/lifecycle/internal/dynamodb"
	"github.com/flexprice/lifecycle/internal/idempotency"
	stripeIntegration "github.com/flexprice/lifecycle/internal/integration/stripe"
	"github.com/flexprice/lifecycle/internal/kafka"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/publisher"
	"github.com/flexprice/lifecycle/internal/pubsub/memory"
	pubsubRouter "github.com/flexprice/lifecycle/internal/pubsub/router"
	"github.com/flexprice/lifecycle/internal/sentry"
	"github.com/flexprice/lifecycle/internal/service"
	"github.com/flexprice/lifecycle/internal/temporal"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/flexprice/lifecycle/internal/validator"
	"github.com/samber/lo"
	"go.uber.org/fx"

	lambdaEvents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Initialize Fx application
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.Initialize,

			// Optional DBs
			dynamodb.NewClient,

			// Idempotency
			idempotency.NewStore,
			idempotency.NewGate,

			// Producers and Consumers
			kafka.NewProducer,
			kafka.NewSubscriber,
			memory.NewPubSub,

			// Event Publisher
			publisher.NewEventPublisher,

			// Temporal
			temporal.NewTemporalClient,
			fx.Annotate(
				temporal.NewScheduleService,
				fx.As(new(service.TriggerScheduler)),
			),

			// Stripe
			stripeIntegration.NewClient,
			fx.Annotate(
				stripeIntegration.NewMeterClient,
				fx.As(new(service.MeteringClient)),
			),

			// PubSub
			provideDLQPublisher,
			pubsubRouter.NewRouter,
		),
	)

	// Monitoring
	opts = append(opts, sentry.Module())

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewSubscriptionChangeService,
			service.NewUsageService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideDLQPublisher(producer *kafka.Producer) message.Publisher {
	return producer.Publisher()
}

func provideHandlers(
	stripeClient *stripeIntegration.Client,
	subscriptionChangeService service.SubscriptionChangeService,
	sentryService *sentry.Service,
	logger *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(),
		Webhook: v1.NewWebhookHandler(stripeClient, subscriptionChangeService, sentryService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	subscriber message.Subscriber,
	temporalClient *temporal.TemporalClient,
	router *pubsubRouter.Router,
	params service.ServiceParams,
	subscriptionChangeService service.SubscriptionChangeService,
	usageService service.UsageService,
	sentryService *sentry.Service,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	temporalClient.RegisterWithLifecycle(lc)

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startMessageRouter(lc, router, subscriber, subscriptionChangeService, usageService, log)
		startTemporalWorker(lc, temporalClient, params)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeConsumer:
		startMessageRouter(lc, router, subscriber, subscriptionChangeService, usageService, log)
	case types.ModeTemporalWorker:
		startTemporalWorker(lc, temporalClient, params)
	case types.ModeAWSLambdaAPI:
		startAWSLambdaAPI(r)
	case types.ModeAWSLambdaUsage:
		startAWSLambdaUsage(usageService, sentryService, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startTemporalWorker(lc fx.Lifecycle, temporalClient *temporal.TemporalClient, params service.ServiceParams) {
	worker := temporal.NewWorker(temporalClient, params)
	worker.RegisterWithLifecycle(lc)
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	subscriber message.Subscriber,
	subscriptionChangeService service.SubscriptionChangeService,
	usageService service.UsageService,
	log *logger.Logger,
) {
	subscriptionChangeService.RegisterHandler(router, subscriber)
	usageService.RegisterHandler(router, subscriber)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting message router...")
			go func() {
				if err := router.Run(); err != nil {
					log.Errorw("message router stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down message router...")
			return router.Close()
		},
	})
}

func startAWSLambdaAPI(r *gin.Engine) {
	ginLambda := ginadapter.New(r)
	lambda.Start(ginLambda.ProxyWithContext)
}

// startAWSLambdaUsage processes one SQS batch per invocation. A returned error
// makes SQS redeliver the whole batch.
func startAWSLambdaUsage(usageService service.UsageService, sentryService *sentry.Service, log *logger.Logger) {
	handler := func(ctx context.Context, sqsEvent lambdaEvents.SQSEvent) error {
		defer sentryService.Flush(2)
		span, ctx := sentryService.StartTransaction(ctx, "lambda.usage_batch")
		if span != nil {
			defer span.Finish()
		}

		batch := lo.Map(sqsEvent.Records, func(record lambdaEvents.SQSMessage, _ int) usage.Message {
			return usage.Message{
				MessageID: record.MessageId,
				Body:      record.Body,
			}
		})

		log.Debugw("received usage batch", "records", len(batch))

		if err := usageService.Process(ctx, batch); err != nil {
			sentryService.CaptureException(err)
			return err
		}
		return nil
	}

	lambda.Start(handler)
}
