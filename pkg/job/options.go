package job

import (
	"context"
	"log/slog"
	"time"
)

// config holds job manager configuration.
type config struct {
	registry   *taskRegistry
	queues     map[string]int
	logger     *slog.Logger
	schedules  []scheduleConfig
	maxWorkers int
	timeout    time.Duration
}

// newConfig creates a config with defaults.
func newConfig() *config {
	return &config{
		registry: newTaskRegistry(),
		queues:   make(map[string]int),
	}
}

// Option configures the job manager.
type Option func(*config)

// WithTask registers a task handler using structural typing.
// The task must implement Name() and Handle(ctx, P) methods.
// The payload type P is inferred from the Handle method signature.
//
// Example:
//
//	type SendDigest struct {
//	    mailer *mailer.Mailer
//	}
//
//	func (t *SendDigest) Name() string { return "send_digest" }
//	func (t *SendDigest) Handle(ctx context.Context, p DigestPayload) error {
//	    _, err := t.mailer.Send(ctx, p.Params())
//	    return err
//	}
//
//	job.WithTask(&SendDigest{mailer: m})
func WithTask[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) Option {
	return func(c *config) {
		wrapper := newTaskWrapper[P, T](task)
		c.registry.register(task.Name(), wrapper)
	}
}

// WithScheduledTask registers a periodic task using structural typing.
// The task must implement Name(), Schedule(), and Handle(ctx) methods.
// Schedule() should return a cron expression (5 fields: min hour day month weekday).
//
// Example:
//
//	type PurgeDeliveries struct {
//	    store *deliverylog.Store
//	}
//
//	func (t *PurgeDeliveries) Name() string     { return "purge_deliveries" }
//	func (t *PurgeDeliveries) Schedule() string { return "0 3 * * *" } // Daily at 03:00
//	func (t *PurgeDeliveries) Handle(ctx context.Context) error {
//	    _, err := t.store.Purge(ctx, 30*24*time.Hour)
//	    return err
//	}
//
//	job.WithScheduledTask(&PurgeDeliveries{store: store})
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithQueue configures a named queue with the specified number of workers.
// If not specified, tasks use the default queue with default worker count.
//
// Example:
//
//	job.WithQueue("mail", 10)   // 10 workers for outgoing mail
//	job.WithQueue("bulk", 2)    // 2 workers for newsletters
func WithQueue(name string, workers int) Option {
	return func(c *config) {
		if workers > 0 {
			c.queues[name] = workers
		}
	}
}

// WithLogger sets the logger for job processing.
// If not set, a noop logger is used.
//
// Example:
//
//	job.WithLogger(slog.Default())
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxWorkers sets the default maximum number of workers.
// This applies to the default queue and any queue without explicit worker count.
// Defaults to 100 if not set.
//
// Example:
//
//	job.WithMaxWorkers(50) // Limit concurrent job processing
func WithMaxWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithTaskTimeout bounds how long a single task may run.
// Zero keeps River's default of one minute.
func WithTaskTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}
