package temporal

import (
	"context"
	"time"

	"github.com/flexprice/lifecycle/internal/config"
	"github.com/flexprice/lifecycle/internal/domain/trigger"
	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/sentry"
	"github.com/flexprice/lifecycle/internal/temporal/models"
	sentrygo "github.com/getsentry/sentry-go"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	temporalsdk "go.temporal.io/sdk/temporal"
)

// ScheduleService manages one-shot cancellation triggers as Temporal schedules.
// Each trigger maps to a schedule with the trigger name as its id, firing the
// item cancellation workflow exactly once at the trigger's fire time.
type ScheduleService struct {
	schedules models.ScheduleClient
	taskQueue string
	logger    *logger.Logger
	sentry    *sentry.Service
}

// NewScheduleService creates a schedule service on the Temporal client
func NewScheduleService(c *TemporalClient, cfg *config.Configuration, log *logger.Logger, sentrySvc *sentry.Service) *ScheduleService {
	s := NewScheduleServiceWithClient(models.NewScheduleClient(c.Client.ScheduleClient()), cfg.Temporal.TaskQueue, log)
	s.sentry = sentrySvc
	return s
}

// NewScheduleServiceWithClient creates a schedule service on any schedule client
func NewScheduleServiceWithClient(schedules models.ScheduleClient, taskQueue string, log *logger.Logger) *ScheduleService {
	if taskQueue == "" {
		taskQueue = models.DefaultTaskQueue
	}
	return &ScheduleService{
		schedules: schedules,
		taskQueue: taskQueue,
		logger:    log,
	}
}

// CreateTrigger registers a new schedule. An existing schedule with the same
// name yields ErrAlreadyExists.
func (s *ScheduleService) CreateTrigger(ctx context.Context, t *trigger.Trigger) error {
	if err := validateTrigger(t); err != nil {
		return err
	}

	span, ctx := s.startSpan(ctx, "create", t.Name)
	defer finishSpan(span)

	_, err := s.schedules.Create(ctx, client.ScheduleOptions{
		ID:               t.Name,
		Spec:             oneShotSpec(t.FireAt),
		Action:           s.action(t),
		RemainingActions: 1,
		Memo: map[string]interface{}{
			"subscription_id": t.Payload.SubscriptionID,
			"item_id":         t.Payload.ItemID,
		},
	})
	if err != nil {
		return s.mapError(err, "create", t.Name)
	}

	s.logger.Debugw("created cancellation trigger",
		"trigger_name", t.Name,
		"fire_at", t.FireAt.UTC(),
	)
	return nil
}

// UpdateTrigger replaces the fire time and payload of an existing schedule and
// re-arms its single remaining action
func (s *ScheduleService) UpdateTrigger(ctx context.Context, t *trigger.Trigger) error {
	if err := validateTrigger(t); err != nil {
		return err
	}

	span, ctx := s.startSpan(ctx, "update", t.Name)
	defer finishSpan(span)

	spec := oneShotSpec(t.FireAt)
	action := s.action(t)

	handle := s.schedules.GetHandle(ctx, t.Name)
	err := handle.Update(ctx, client.ScheduleUpdateOptions{
		DoUpdate: func(input client.ScheduleUpdateInput) (*client.ScheduleUpdate, error) {
			schedule := input.Description.Schedule
			schedule.Spec = &spec
			schedule.Action = action
			if schedule.State == nil {
				schedule.State = &client.ScheduleState{}
			}
			schedule.State.LimitedActions = true
			schedule.State.RemainingActions = 1
			schedule.State.Paused = false
			return &client.ScheduleUpdate{Schedule: &schedule}, nil
		},
	})
	if err != nil {
		return s.mapError(err, "update", t.Name)
	}

	s.logger.Debugw("updated cancellation trigger",
		"trigger_name", t.Name,
		"fire_at", t.FireAt.UTC(),
	)
	return nil
}

// DeleteTrigger removes a schedule. A missing schedule yields ErrNotFound.
func (s *ScheduleService) DeleteTrigger(ctx context.Context, name string) error {
	if name == "" {
		return ierr.NewError("trigger name is required").
			Mark(ierr.ErrValidation)
	}

	span, ctx := s.startSpan(ctx, "delete", name)
	defer finishSpan(span)

	if err := s.schedules.GetHandle(ctx, name).Delete(ctx); err != nil {
		return s.mapError(err, "delete", name)
	}

	s.logger.Debugw("deleted cancellation trigger", "trigger_name", name)
	return nil
}

func (s *ScheduleService) startSpan(ctx context.Context, op, name string) (*sentrygo.Span, context.Context) {
	return s.sentry.StartSchedulerSpan(ctx, "temporal.schedule."+op, map[string]interface{}{
		"trigger_name": name,
	})
}

func finishSpan(span *sentrygo.Span) {
	if span != nil {
		span.Finish()
	}
}

func (s *ScheduleService) action(t *trigger.Trigger) *client.ScheduleWorkflowAction {
	return &client.ScheduleWorkflowAction{
		ID:        t.Name,
		Workflow:  models.WorkflowSubscriptionItemCancellation,
		Args:      []interface{}{models.NewItemCancellationWorkflowInput(t)},
		TaskQueue: s.taskQueue,
	}
}

func (s *ScheduleService) mapError(err error, op, name string) error {
	details := map[string]interface{}{
		"trigger_name": name,
		"operation":    op,
	}

	var notFound *serviceerror.NotFound
	switch {
	case ierr.Is(err, temporalsdk.ErrScheduleAlreadyRunning):
		return ierr.WithError(err).
			WithHintf("Trigger %s already exists", name).
			WithReportableDetails(details).
			Mark(ierr.ErrAlreadyExists)
	case ierr.As(err, &notFound):
		return ierr.WithError(err).
			WithHintf("Trigger %s does not exist", name).
			WithReportableDetails(details).
			Mark(ierr.ErrNotFound)
	default:
		s.logger.Errorw("temporal schedule operation failed",
			"error", err,
			"operation", op,
			"trigger_name", name,
		)
		return ierr.WithError(err).
			WithHint("Scheduler request failed").
			WithReportableDetails(details).
			Mark(ierr.ErrDependency)
	}
}

// oneShotSpec matches exactly one instant, to the second, in UTC
func oneShotSpec(at time.Time) client.ScheduleSpec {
	at = at.UTC()
	return client.ScheduleSpec{
		Calendars: []client.ScheduleCalendarSpec{{
			Second:     []client.ScheduleRange{{Start: at.Second()}},
			Minute:     []client.ScheduleRange{{Start: at.Minute()}},
			Hour:       []client.ScheduleRange{{Start: at.Hour()}},
			DayOfMonth: []client.ScheduleRange{{Start: at.Day()}},
			Month:      []client.ScheduleRange{{Start: int(at.Month())}},
			Year:       []client.ScheduleRange{{Start: at.Year()}},
		}},
		TimeZoneName: models.ScheduleTimeZone,
	}
}

func validateTrigger(t *trigger.Trigger) error {
	if t == nil || t.Name == "" {
		return ierr.NewError("trigger name is required").
			Mark(ierr.ErrValidation)
	}
	if t.FireAt.IsZero() {
		return ierr.NewError("trigger fire time is required").
			WithReportableDetails(map[string]interface{}{"trigger_name": t.Name}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
