package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
)

// taskArgs is the River job arguments type shared by every task.
type taskArgs struct {
	TaskName  string          `json:"task_name"`
	UniqueKey string          `json:"unique_key,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (taskArgs) Kind() string {
	return "mailhelper:task"
}

// taskWorker dispatches every job to its registered executor.
type taskWorker struct {
	river.WorkerDefaults[taskArgs]
	registry *taskRegistry
	logger   *slog.Logger
	timeout  time.Duration
}

// Timeout overrides River's per-job timeout when one is configured.
func (w *taskWorker) Timeout(*river.Job[taskArgs]) time.Duration {
	return w.timeout
}

func (w *taskWorker) Work(ctx context.Context, job *river.Job[taskArgs]) error {
	executor, ok := w.registry.get(job.Args.TaskName)
	if !ok || executor == nil {
		return river.JobCancel(fmt.Errorf("%w: %s", ErrUnknownTask, job.Args.TaskName))
	}

	log := w.logger.With(
		slog.String("task", job.Args.TaskName),
		slog.Int64("job_id", job.ID),
		slog.Int("attempt", job.Attempt),
	)
	log.DebugContext(ctx, "executing task")

	if err := executor.Execute(ctx, job.Args.Payload); err != nil {
		if !retryable(err) {
			log.WarnContext(ctx, "task cancelled", slog.Any("error", err))
			return river.JobCancel(err)
		}
		log.ErrorContext(ctx, "task failed", slog.Any("error", err))
		return err
	}

	log.DebugContext(ctx, "task completed")
	return nil
}
