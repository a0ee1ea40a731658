package service

import (
	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/idempotency"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Idempotency gate shared by every delivery of a notification
	Gate idempotency.Gate

	// External collaborators
	Scheduler      TriggerScheduler
	Metering       MeteringClient
	EventPublisher publisher.EventPublisher
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	gate idempotency.Gate,
	scheduler TriggerScheduler,
	metering MeteringClient,
	eventPublisher publisher.EventPublisher,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		Gate:           gate,
		Scheduler:      scheduler,
		Metering:       metering,
		EventPublisher: eventPublisher,
	}
}
