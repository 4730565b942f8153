// Package tasks runs mailer deliveries as background jobs.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/mailhelper/pkg/job"
	"github.com/dmitrymomot/mailhelper/pkg/logger"
	"github.com/dmitrymomot/mailhelper/pkg/mailer"
)

// SendTaskName is the job name of SendTask.
const SendTaskName = "mailhelper:send"

// Mailer is the part of *mailer.Mailer the send task uses.
type Mailer interface {
	Send(ctx context.Context, p mailer.SendParams) ([]mailer.Result, error)
}

// Enqueuer queues follow-up jobs. *job.Manager implements it.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error
}

// BatchEnqueuer queues several jobs at once. *job.Manager implements it.
type BatchEnqueuer interface {
	EnqueueMany(ctx context.Context, jobs ...job.Job) error
}

// TxEnqueuer queues jobs inside a caller's transaction. *job.Manager and
// *job.Enqueuer implement it.
type TxEnqueuer interface {
	EnqueueTx(ctx context.Context, tx pgx.Tx, name string, payload any, opts ...job.EnqueueOption) error
}

// SendTask delivers a SendPayload through the mailer.
//
// Build errors (missing template, empty subject, no content) cancel the job.
// When every recipient fails the job is retried. When only some fail, the
// failed and unsent recipients are queued as a new job so the ones already
// reached are not mailed twice.
type SendTask struct {
	mailer  Mailer
	requeue Enqueuer
	logger  *slog.Logger
}

// NewSendTask creates the task.
func NewSendTask(m Mailer, log *slog.Logger) *SendTask {
	if log == nil {
		log = logger.NewNope()
	}
	return &SendTask{mailer: m, logger: log}
}

// SetEnqueuer enables requeueing of partially failed sends.
// Without it a partial failure is logged and the job is cancelled.
func (t *SendTask) SetEnqueuer(e Enqueuer) *SendTask {
	t.requeue = e
	return t
}

// Name implements the job task contract.
func (t *SendTask) Name() string { return SendTaskName }

// Handle implements the job task contract.
func (t *SendTask) Handle(ctx context.Context, p SendPayload) error {
	results, err := t.mailer.Send(ctx, p.Params())
	if err == nil {
		return nil
	}

	if !errors.Is(err, mailer.ErrSendFailed) {
		if isBuildError(err) {
			return job.Permanent(err)
		}
		return err
	}

	pending := pendingRecipients(p.To, results)
	if len(pending) == len(compactRecipients(p.To)) {
		return err
	}

	if t.requeue == nil {
		t.logger.WarnContext(ctx, "partial delivery, failed recipients dropped",
			slog.Any("recipients", pending),
			slog.Any("error", err),
		)
		return job.Permanent(err)
	}

	if qErr := t.requeue.Enqueue(ctx, SendTaskName, p.withRecipients(pending...)); qErr != nil {
		return errors.Join(err, qErr)
	}

	t.logger.InfoContext(ctx, "partial delivery, failed recipients requeued",
		slog.Any("recipients", pending),
	)
	return nil
}

// EnqueueSend splits p into one job per recipient, so a retry only repeats
// the delivery that failed.
func EnqueueSend(ctx context.Context, e BatchEnqueuer, p SendPayload, opts ...job.EnqueueOption) error {
	if err := p.Validate(); err != nil {
		return err
	}

	to := compactRecipients(p.To)
	jobs := make([]job.Job, 0, len(to))
	for _, addr := range to {
		jobs = append(jobs, job.Job{
			Name:    SendTaskName,
			Payload: p.withRecipients(addr),
			Options: opts,
		})
	}
	return e.EnqueueMany(ctx, jobs...)
}

// EnqueueSendTx is EnqueueSend inside tx. The jobs exist only once tx commits.
func EnqueueSendTx(ctx context.Context, e TxEnqueuer, tx pgx.Tx, p SendPayload, opts ...job.EnqueueOption) error {
	if err := p.Validate(); err != nil {
		return err
	}

	for _, addr := range compactRecipients(p.To) {
		if err := e.EnqueueTx(ctx, tx, SendTaskName, p.withRecipients(addr), opts...); err != nil {
			return err
		}
	}
	return nil
}

func isBuildError(err error) bool {
	for _, target := range []error{
		mailer.ErrNoRecipient,
		mailer.ErrNoSubject,
		mailer.ErrNoContent,
		mailer.ErrInvalidTemplatePath,
		mailer.ErrTemplateNotFound,
		mailer.ErrLayoutNotFound,
		mailer.ErrInvalidFrontmatter,
		mailer.ErrRenderFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// pendingRecipients returns the recipients of to that did not get a successful
// result. Each successful result accounts for one occurrence of its recipient,
// so a duplicate address stays pending when only one copy went out.
func pendingRecipients(to []string, results []mailer.Result) []string {
	delivered := make(map[string]int, len(results))
	for _, r := range results {
		if r.OK() {
			delivered[r.Recipient]++
		}
	}

	var pending []string
	for _, addr := range compactRecipients(to) {
		if delivered[addr] > 0 {
			delivered[addr]--
			continue
		}
		pending = append(pending, addr)
	}
	return pending
}

// compactRecipients mirrors the mailer's recipient cleanup.
func compactRecipients(to []string) []string {
	out := make([]string, 0, len(to))
	for _, addr := range to {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
