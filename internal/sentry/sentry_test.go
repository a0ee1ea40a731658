package sentry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestDisabledServiceIsNoop(t *testing.T) {
	svc := NewSentryService(config.GetDefaultConfig(), logger.NewNoop())
	ctx := context.Background()

	span, got := svc.StartSchedulerSpan(ctx, "temporal.schedule.create", nil)
	assert.Nil(t, span)
	assert.Equal(t, ctx, got)

	span, _ = svc.StartKafkaConsumerSpan(ctx, "usage_batches")
	assert.Nil(t, span)

	span, _ = svc.MonitorEventProcessing(ctx, "customer.subscription.updated", time.Now(), nil)
	assert.Nil(t, span)

	span, _ = svc.StartTransaction(ctx, "lambda.usage_batch")
	assert.Nil(t, span)

	svc.CaptureException(errors.New("ignored"))
	assert.True(t, svc.Flush(1))
}

func TestNilServiceIsNoop(t *testing.T) {
	var svc *Service
	span, _ := svc.StartSchedulerSpan(context.Background(), "op", nil)
	assert.Nil(t, span)
	svc.CaptureException(errors.New("ignored"))
}

func TestLagSeverity(t *testing.T) {
	assert.Equal(t, "normal", lagSeverity(time.Second))
	assert.Equal(t, "warning", lagSeverity(2*time.Minute))
	assert.Equal(t, "critical", lagSeverity(10*time.Minute))
}
