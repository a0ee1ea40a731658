package temporal

import (
	"context"

	"github.com/flexprice/lifecycle/internal/logger"
	"github.com/flexprice/lifecycle/internal/service"
	"github.com/flexprice/lifecycle/internal/temporal/models"
	"go.temporal.io/sdk/worker"
	"go.uber.org/fx"
)

// Worker executes the workflows started by fired cancellation triggers
type Worker struct {
	worker    worker.Worker
	taskQueue string
	log       *logger.Logger
}

// NewWorker creates a worker on the configured task queue with the item
// cancellation workflow and activity registered
func NewWorker(client *TemporalClient, params service.ServiceParams) *Worker {
	taskQueue := params.Config.Temporal.TaskQueue
	if taskQueue == "" {
		taskQueue = models.DefaultTaskQueue
	}

	w := worker.New(client.Client, taskQueue, worker.Options{
		WorkerStopTimeout: models.DefaultWorkerStopTimeout,
	})
	RegisterWorkflowsAndActivities(w, params)

	return &Worker{
		worker:    w,
		taskQueue: taskQueue,
		log:       params.Logger,
	}
}

func (w *Worker) Start() error {
	w.log.Infow("starting temporal worker", "task_queue", w.taskQueue)
	return w.worker.Start()
}

func (w *Worker) Stop() {
	w.log.Infow("stopping temporal worker", "task_queue", w.taskQueue)
	w.worker.Stop()
}

// RegisterWithLifecycle starts the worker with the app and stops it on shutdown,
// giving up waiting once the stop context expires
func (w *Worker) RegisterWithLifecycle(lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start()
		},
		OnStop: func(ctx context.Context) error {
			done := make(chan struct{})
			go func() {
				defer close(done)
				w.Stop()
			}()

			select {
			case <-done:
				w.log.Info("temporal worker stopped")
			case <-ctx.Done():
				w.log.Warnw("timed out stopping temporal worker", "error", ctx.Err())
			}
			return nil
		},
	})
}
