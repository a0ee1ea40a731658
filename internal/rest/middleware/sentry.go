package middleware

import (
	"time"

	"github.com/flexprice/lifecycle/internal/config"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware binds a sentry hub to every request when sentry is enabled.
// Webhook handlers run synchronously, so delivery is not awaited.
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}
