package temporal

import (
	"github.com/flexprice/lifecycle/internal/service"
	"github.com/flexprice/lifecycle/internal/temporal/activities"
	"github.com/flexprice/lifecycle/internal/temporal/models"
	"github.com/flexprice/lifecycle/internal/temporal/workflows"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// RegisterWorkflowsAndActivities registers all workflows and activities with a Temporal worker.
func RegisterWorkflowsAndActivities(w worker.Registry, params service.ServiceParams) {
	w.RegisterWorkflowWithOptions(workflows.SubscriptionItemCancellationWorkflow, workflow.RegisterOptions{
		Name: models.WorkflowSubscriptionItemCancellation,
	})

	cancellationActivities := activities.NewCancellationActivities(
		params.EventPublisher,
		params.Config.Event.Source,
		params.Logger,
	)
	w.RegisterActivityWithOptions(cancellationActivities.ApplyItemCancellation, activity.RegisterOptions{
		Name: models.ActivityApplyItemCancellation,
	})

	params.Logger.Infow("registered temporal workflows and activities",
		"workflows", []string{models.WorkflowSubscriptionItemCancellation},
		"activities", []string{models.ActivityApplyItemCancellation},
	)
}
