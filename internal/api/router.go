package api

import (
	v1 "github.com/flexprice/lifecycle/internal/api/v1"
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/rest/middleware"
	"github.com/flexprice/lifecycle/internal/types"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Webhook *v1.WebhookHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	logger.Debugw("registered http routes", "routes", len(router.Routes()))
	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	webhooks := router.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
	}
}
