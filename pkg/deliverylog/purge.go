package deliverylog

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/mailhelper/pkg/logger"
)

// PurgeTaskName is the job name of PurgeTask.
const PurgeTaskName = "mailhelper:purge_deliveries"

// PurgeTask deletes old deliveries on a schedule.
type PurgeTask struct {
	store     *Store
	logger    *slog.Logger
	schedule  string
	retention time.Duration
}

// NewPurgeTask creates the task. schedule is a cron expression or descriptor.
func NewPurgeTask(store *Store, retention time.Duration, schedule string, log *slog.Logger) *PurgeTask {
	if log == nil {
		log = logger.NewNope()
	}
	return &PurgeTask{store: store, retention: retention, schedule: schedule, logger: log}
}

// Name implements the scheduled task contract.
func (t *PurgeTask) Name() string { return PurgeTaskName }

// Schedule implements the scheduled task contract.
func (t *PurgeTask) Schedule() string { return t.schedule }

// Handle implements the scheduled task contract.
func (t *PurgeTask) Handle(ctx context.Context) error {
	n, err := t.store.Purge(ctx, t.retention)
	if err != nil {
		return err
	}
	t.logger.InfoContext(ctx, "deliveries purged",
		slog.Int64("rows", n),
		slog.Duration("retention", t.retention),
	)
	return nil
}
