// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"matching-workers/internal/common/config"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"
)

// JobHandler is implemented by every task handler in internal/workers.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// Worker is one open job subscription.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// Start opens a job worker for taskType. Handler errors are logged here; the
// handler itself has already failed or thrown on the job.
func Start(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandler, logger *zap.Logger) *Worker {
	maxJobs := wcfg.MaxJobsActive
	if maxJobs <= 0 {
		maxJobs = 5
	}
	timeout := time.Duration(wcfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(func(c worker.JobClient, job entities.Job) {
			if err := handler.Handle(c, job); err != nil {
				logger.Error("handler returned error",
					zap.String("taskType", taskType),
					zap.Int64("jobKey", job.Key),
					zap.Error(err))
			}
		}).
		MaxJobsActive(maxJobs).
		Timeout(timeout).
		Name("matching-workers").
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", maxJobs),
		zap.Duration("timeout", timeout))

	return &Worker{worker: jobWorker, logger: logger, taskType: taskType}
}

func (w *Worker) TaskType() string {
	return w.taskType
}

// Stop closes the subscription and waits for in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
