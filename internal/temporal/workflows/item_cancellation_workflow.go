package workflows

import (
	"time"

	"github.com/flexprice/lifecycle/internal/temporal/models"
	temporalsdk "go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// SubscriptionItemCancellationWorkflow runs when a cancellation schedule fires
func SubscriptionItemCancellationWorkflow(ctx workflow.Context, input models.ItemCancellationWorkflowInput) error {
	logger := workflow.GetLogger(ctx)

	if err := input.Validate(); err != nil {
		logger.Error("Invalid item cancellation input", "trigger", input.TriggerName, "error", err)
		return temporalsdk.NewNonRetryableApplicationError("invalid workflow input", "ValidationError", err)
	}

	logger.Info("Starting item cancellation workflow",
		"subscriptionID", input.Payload.SubscriptionID,
		"itemID", input.Payload.ItemID)

	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute * 5,
		RetryPolicy: &temporalsdk.RetryPolicy{
			InitialInterval:    models.DefaultInitialInterval,
			BackoffCoefficient: models.DefaultBackoffCoefficient,
			MaximumInterval:    models.DefaultMaximumInterval,
			MaximumAttempts:    models.DefaultMaximumAttempts,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	if err := workflow.ExecuteActivity(ctx, models.ActivityApplyItemCancellation, input).Get(ctx, nil); err != nil {
		logger.Error("Item cancellation failed",
			"subscriptionID", input.Payload.SubscriptionID,
			"itemID", input.Payload.ItemID,
			"error", err)
		return err
	}

	return nil
}
