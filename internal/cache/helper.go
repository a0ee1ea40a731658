package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// StartCacheSpan starts a span for a cache call when ctx carries a sentry hub,
// nil otherwise
func StartCacheSpan(ctx context.Context, cache, operation string, params map[string]interface{}) *sentry.Span {
	if sentry.GetHubFromContext(ctx) == nil {
		return nil
	}

	name := "cache." + cache + "." + operation
	span := sentry.StartSpan(ctx, name)
	span.Description = name
	span.Op = "cache"
	span.SetData("cache", cache)
	for k, v := range params {
		span.SetData(k, v)
	}
	return span
}

func FinishSpan(span *sentry.Span) {
	if span != nil {
		span.Finish()
	}
}

func SetSpanError(span *sentry.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.Status = sentry.SpanStatusInternalError
	span.SetData("error", err.Error())
}

func SetSpanSuccess(span *sentry.Span) {
	if span != nil {
		span.Status = sentry.SpanStatusOK
	}
}
