package models

import (
	"time"
)

const (
	// DefaultTaskQueue is the default task queue name
	DefaultTaskQueue = "subscription-lifecycle"

	// DefaultWorkerStopTimeout is the default timeout for worker graceful shutdown
	DefaultWorkerStopTimeout = time.Second * 30

	// DefaultInitialInterval is the default initial interval for retry policies
	DefaultInitialInterval = time.Second

	// DefaultMaximumInterval is the default maximum interval for retry policies
	DefaultMaximumInterval = time.Minute

	// DefaultBackoffCoefficient is the default backoff coefficient for retry policies
	DefaultBackoffCoefficient = 2.0

	// DefaultMaximumAttempts is the default maximum attempts for retry policies
	DefaultMaximumAttempts = 5
)

// Registered workflow and activity names
const (
	WorkflowSubscriptionItemCancellation = "SubscriptionItemCancellationWorkflow"
	ActivityApplyItemCancellation        = "ApplyItemCancellation"
)

// ScheduleTimeZone is the time zone schedule calendars are evaluated in
const ScheduleTimeZone = "UTC"
