// Package job provides background job processing using River (Postgres-native queue).
//
// Outgoing mail is delivered from workers rather than from the request that
// triggered it. The package wraps River with a small type-safe API: tasks are
// plain structs, payloads are JSON, and every task shares a single River job
// kind so workers only need the registry to route them.
//
// # Task Definition
//
// Tasks are structs with Name() and Handle() methods. No interface import is
// required; the payload type is inferred from Handle:
//
//	type SendReceipt struct {
//	    mailer *mailer.Mailer
//	}
//
//	func (t *SendReceipt) Name() string { return "send_receipt" }
//
//	func (t *SendReceipt) Handle(ctx context.Context, p ReceiptPayload) error {
//	    _, err := t.mailer.Send(ctx, p.Params())
//	    return err
//	}
//
// Payloads implementing Validate() error are checked before Handle runs.
//
// # Scheduled Tasks
//
// Periodic tasks implement Schedule() returning a cron expression or a
// descriptor such as @daily:
//
//	func (t *PurgeDeliveries) Schedule() string { return "0 3 * * *" }
//
// # Manager
//
//	manager, err := job.NewManager(pool,
//	    job.WithTask(&SendReceipt{mailer: m}),
//	    job.WithScheduledTask(&PurgeDeliveries{store: store}),
//	    job.WithQueue("mail", 10),
//	    job.WithTaskTimeout(2*time.Minute),
//	    job.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := manager.Start(ctx); err != nil {
//	    return err
//	}
//	defer manager.Stop(context.Background())
//
// Processes that only dispatch work use [NewEnqueuer] instead.
//
// # Enqueueing Jobs
//
//	err := manager.Enqueue(ctx, "send_receipt", payload,
//	    job.InQueue("mail"),
//	    job.MaxAttempts(5),
//	)
//
// [Manager.EnqueueMany] inserts a batch in one round trip, and
// [Manager.EnqueueTx] inserts inside a caller's transaction so the job only
// exists if the transaction commits.
//
// # Retries
//
// Returned errors are retried with River's exponential backoff. Errors wrapped
// with [Permanent], payload errors and unknown task names cancel the job instead.
//
// # Errors
//
//   - [ErrUnknownTask] - task name not registered
//   - [ErrInvalidPayload] - payload could not be decoded or failed validation
//   - [ErrPermanent] - failure that retrying cannot fix
//   - [ErrAlreadyStarted] - manager already running
//   - [ErrNotStarted] - manager not running
//   - [ErrHealthcheckFailed] - health check failed
//
// # Database Migrations
//
// River needs its own tables. They are created with River's migrator before
// the manager starts. [Migrate] runs it; see https://riverqueue.com/docs/migrations.
package job
