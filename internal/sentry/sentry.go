package sentry

import (
	"context"
	"time"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"
)

// Notifications older than these thresholds are tagged for alerting
const (
	lagWarning  = time.Minute
	lagCritical = 5 * time.Minute
)

type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

// Module provides fx options for Sentry
func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewSentryService),
		fx.Invoke(RegisterHooks),
	)
}

// RegisterHooks initialises the SDK on start and flushes pending events on stop
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !svc.cfg.Sentry.Enabled {
				svc.logger.Info("Sentry is disabled")
				return nil
			}

			err := sentry.Init(sentry.ClientOptions{
				Dsn:              svc.cfg.Sentry.DSN,
				Environment:      svc.cfg.Sentry.Environment,
				EnableTracing:    true,
				TracesSampleRate: svc.cfg.Sentry.SampleRate,
				ServerName:       svc.cfg.Event.Source,
				TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
					if ctx.Span.Name == "GET /health" {
						return 0.0
					}
					return svc.cfg.Sentry.SampleRate
				}),
			})
			if err != nil {
				svc.logger.Errorw("failed to initialize sentry", "error", err)
				return err
			}
			svc.logger.Infow("sentry initialized",
				"environment", svc.cfg.Sentry.Environment,
				"sample_rate", svc.cfg.Sentry.SampleRate,
				"mode", svc.cfg.Deployment.Mode,
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			svc.Flush(2)
			return nil
		},
	})
}

// NewSentryService creates a new Sentry service
func NewSentryService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Service) enabled() bool {
	return s != nil && s.cfg.Sentry.Enabled
}

// CaptureException reports err tagged with the run mode
func (s *Service) CaptureException(err error) {
	if !s.enabled() || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("mode", string(s.cfg.Deployment.Mode))
		sentry.CaptureException(err)
	})
}

// Flush waits up to timeout seconds for queued events to be sent
func (s *Service) Flush(timeout uint) bool {
	if !s.enabled() {
		return true
	}
	return sentry.Flush(time.Duration(timeout) * time.Second)
}

func (s *Service) startSpan(ctx context.Context, op, name string, data map[string]interface{}) (*sentry.Span, context.Context) {
	if !s.enabled() {
		return nil, ctx
	}

	span := sentry.StartSpan(ctx, op)
	span.Description = name
	for k, v := range data {
		span.SetData(k, v)
	}
	return span, span.Context()
}

// StartSchedulerSpan starts a span around a trigger scheduler call
func (s *Service) StartSchedulerSpan(ctx context.Context, operation string, params map[string]interface{}) (*sentry.Span, context.Context) {
	return s.startSpan(ctx, "scheduler.temporal", operation, params)
}

// StartKafkaConsumerSpan starts a span for one consumed message of topic
func (s *Service) StartKafkaConsumerSpan(ctx context.Context, topic string) (*sentry.Span, context.Context) {
	return s.startSpan(ctx, "kafka.consume", "Consuming message from "+topic, map[string]interface{}{
		"topic": topic,
	})
}

// MonitorEventProcessing starts a span for a billing provider notification and
// tags the enclosing transaction with the delivery lag
func (s *Service) MonitorEventProcessing(ctx context.Context, eventName string, eventTimestamp time.Time, metadata map[string]interface{}) (*sentry.Span, context.Context) {
	lag := time.Since(eventTimestamp)

	data := map[string]interface{}{
		"event_name": eventName,
		"lag_ms":     lag.Milliseconds(),
	}
	for k, v := range metadata {
		data[k] = v
	}

	span, ctx := s.startSpan(ctx, "notification.process", "Processing "+eventName, data)
	if span == nil {
		return nil, ctx
	}

	if tx := sentry.TransactionFromContext(ctx); tx != nil {
		tx.SetTag("notification.lag.severity", lagSeverity(lag))
	}
	return span, ctx
}

func lagSeverity(lag time.Duration) string {
	switch {
	case lag >= lagCritical:
		return "critical"
	case lag >= lagWarning:
		return "warning"
	default:
		return "normal"
	}
}

// StartTransaction starts a transaction on a hub bound to ctx
func (s *Service) StartTransaction(ctx context.Context, name string, options ...sentry.SpanOption) (*sentry.Span, context.Context) {
	if !s.enabled() {
		return nil, ctx
	}

	if sentry.GetHubFromContext(ctx) == nil {
		ctx = sentry.SetHubOnContext(ctx, sentry.CurrentHub().Clone())
	}

	opts := append([]sentry.SpanOption{
		sentry.WithOpName(name),
		sentry.WithTransactionSource(sentry.SourceCustom),
	}, options...)

	transaction := sentry.StartTransaction(ctx, name, opts...)
	return transaction, transaction.Context()
}
