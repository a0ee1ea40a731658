package workflows

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flexprice/lifecycle/internal/domain/trigger"
	"github.com/flexprice/lifecycle/internal/temporal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
	"go.temporal.io/sdk/workflow"
)

type ItemCancellationWorkflowSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func TestItemCancellationWorkflow(t *testing.T) {
	suite.Run(t, new(ItemCancellationWorkflowSuite))
}

func (s *ItemCancellationWorkflowSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	s.env.RegisterWorkflowWithOptions(SubscriptionItemCancellationWorkflow, workflow.RegisterOptions{
		Name: models.WorkflowSubscriptionItemCancellation,
	})
	s.env.RegisterActivityWithOptions(
		func(context.Context, models.ItemCancellationWorkflowInput) error { return nil },
		activity.RegisterOptions{Name: models.ActivityApplyItemCancellation},
	)
}

func (s *ItemCancellationWorkflowSuite) AfterTest(_, _ string) {
	s.env.AssertExpectations(s.T())
}

func validInput() models.ItemCancellationWorkflowInput {
	return models.ItemCancellationWorkflowInput{
		TriggerName: trigger.Name("sub_123", "si_1"),
		FireAt:      time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC),
		Payload: trigger.Payload{
			CustomerID:     "cus_123",
			SubscriptionID: "sub_123",
			ItemID:         "si_1",
		},
	}
}

func (s *ItemCancellationWorkflowSuite) TestRunsActivity() {
	s.env.OnActivity(models.ActivityApplyItemCancellation, mock.Anything, validInput()).Return(nil).Once()

	s.env.ExecuteWorkflow(models.WorkflowSubscriptionItemCancellation, validInput())

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *ItemCancellationWorkflowSuite) TestActivityFailureFailsWorkflow() {
	s.env.OnActivity(models.ActivityApplyItemCancellation, mock.Anything, mock.Anything).
		Return(errors.New("event bus unavailable"))

	s.env.ExecuteWorkflow(models.WorkflowSubscriptionItemCancellation, validInput())

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func (s *ItemCancellationWorkflowSuite) TestInvalidInputIsNotRetried() {
	input := validInput()
	input.Payload.ItemID = ""

	s.env.ExecuteWorkflow(models.WorkflowSubscriptionItemCancellation, input)

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Require().Error(err)
	s.Contains(err.Error(), "invalid workflow input")
}
