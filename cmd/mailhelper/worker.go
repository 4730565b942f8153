package main

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mailhelper/internal/server"
	"github.com/dmitrymomot/mailhelper/pkg/db"
	"github.com/dmitrymomot/mailhelper/pkg/deliverylog"
	"github.com/dmitrymomot/mailhelper/pkg/health"
	"github.com/dmitrymomot/mailhelper/pkg/job"
	"github.com/dmitrymomot/mailhelper/pkg/mailer"
	"github.com/dmitrymomot/mailhelper/pkg/mailer/tasks"
	"github.com/dmitrymomot/mailhelper/pkg/redis"
)

// bulkQueue takes low-priority sends such as newsletters.
const bulkQueue = "bulk"

func (c *cli) newWorkerCmd() *cobra.Command {
	var skipMigrations bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the delivery worker",
		Long: `Process queued sends, record deliveries and serve health probes.

The worker listens on MAILHELPER_HTTP_ADDR for /health/live and /health/ready,
purges old delivery records on MAILHELPER_PURGE_SCHEDULE and, when
MAILHELPER_TEST_ADDRESS is set, sends the test email on MAILHELPER_TEST_SCHEDULE.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := &deps{}
			if err := c.connectDB(ctx, d); err != nil {
				return err
			}
			if err := c.connectOptional(ctx, d); err != nil {
				d.Close()
				return err
			}

			if !skipMigrations {
				if err := migrateAll(ctx, d, c.log); err != nil {
					d.Close()
					return err
				}
			}

			srv, err := c.newWorker(ctx, d)
			if err != nil {
				d.Close()
				return err
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&skipMigrations, "skip-migrations", false, "do not apply migrations on start")
	return cmd
}

// newWorker wires the job manager and health server. The returned server
// closes d's connections on shutdown.
func (c *cli) newWorker(ctx context.Context, d *deps) (*server.Server, error) {
	deliveries := deliverylog.New(d.pool, c.log)
	m, err := c.newMailer(ctx, d, mailer.NewHooks().AfterSend(deliveries.Hook()))
	if err != nil {
		return nil, err
	}

	opts, send := c.jobOptions(m, deliveries)
	manager, err := job.NewManager(d.pool, opts...)
	if err != nil {
		return nil, err
	}
	// Partial failures requeue the recipients still pending.
	send.SetEnqueuer(manager)

	checks := health.Checks{
		"postgres": db.Healthcheck(d.pool),
		"jobs":     job.Healthcheck(manager),
	}
	if d.redis != nil {
		checks["redis"] = redis.Healthcheck(d.redis)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Mount("/health", health.Router(checks, health.WithLogger(c.log)))

	srvOpts := []server.Option{
		server.WithLogger(c.log),
		server.WithShutdownTimeout(c.cfg.ShutdownTimeout),
		server.WithStartHook(manager.StartFunc()),
		server.WithShutdownHook(manager.Shutdown()),
	}
	if d.redis != nil {
		srvOpts = append(srvOpts, server.WithShutdownHook(redis.Shutdown(d.redis)))
	}
	srvOpts = append(srvOpts, server.WithShutdownHook(db.Shutdown(d.pool)))

	return server.New(c.cfg.HTTPAddr, r, srvOpts...), nil
}

func (c *cli) jobOptions(m *mailer.Mailer, deliveries *deliverylog.Store) ([]job.Option, *tasks.SendTask) {
	send := tasks.NewSendTask(m, c.log)
	opts := []job.Option{
		job.WithLogger(c.log),
		job.WithMaxWorkers(c.cfg.Workers),
		job.WithQueue(bulkQueue, c.cfg.BulkWorkers),
		job.WithTaskTimeout(c.cfg.TaskTimeout),
		job.WithTask(send),
		job.WithScheduledTask(deliverylog.NewPurgeTask(deliveries, c.cfg.DeliveryRetention, c.cfg.PurgeSchedule, c.log)),
	}
	if c.cfg.TestAddress != "" {
		opts = append(opts, job.WithScheduledTask(tasks.NewSelfTestTask(m, c.cfg.TestAddress, c.cfg.TestSchedule)))
	}
	return opts, send
}

// migrateAll creates the River tables and the delivery log schema.
func migrateAll(ctx context.Context, d *deps, log *slog.Logger) error {
	if err := job.Migrate(ctx, d.pool); err != nil {
		return err
	}
	return db.Migrate(ctx, d.pool, deliverylog.Migrations, deliverylog.MigrationsDir, d.migrationsTable, log)
}
