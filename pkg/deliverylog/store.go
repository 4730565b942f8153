// Package deliverylog records the outcome of every delivery in Postgres.
//
// Register [Store.Hook] as an after-send hook and each Result becomes a row in
// email_deliveries. The schema ships as goose migrations in [Migrations].
package deliverylog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/mailhelper/pkg/logger"
	"github.com/dmitrymomot/mailhelper/pkg/mailer"
)

// Migrations holds the goose migrations, under MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

const (
	defaultLimit = 50
	maxLimit     = 500
	hookTimeout  = 5 * time.Second
)

// StatusQueued marks a delivery handed to the worker but not yet attempted.
const StatusQueued mailer.Status = "queued"

var (
	ErrRecordFailed = errors.New("deliverylog: failed to record delivery")
	ErrQueryFailed  = errors.New("deliverylog: failed to query deliveries")
	ErrNoRecipient  = errors.New("deliverylog: recipient is required")
)

// DB is the subset of pgx used by the store.
// *pgxpool.Pool, *pgx.Conn and pgx.Tx satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Entry is one recorded delivery.
type Entry struct {
	SentAt    time.Time
	ID        uuid.UUID
	MessageID string
	Recipient string
	Subject   string
	Status    mailer.Status
	Error     string
	Tags      []string
}

// Store reads and writes email_deliveries.
type Store struct {
	db     DB
	logger *slog.Logger
	newID  func() uuid.UUID
}

// New creates a Store. A nil logger discards hook failures.
func New(db DB, log *slog.Logger) *Store {
	if log == nil {
		log = logger.NewNope()
	}
	return &Store{db: db, logger: log, newID: uuid.New}
}

const insertQuery = `INSERT INTO email_deliveries
    (id, message_id, recipient, subject, status, error, tags, sent_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Record inserts one row for res.
func (s *Store) Record(ctx context.Context, res mailer.Result, tags ...string) error {
	e := newEntry(res, tags)
	e.ID = s.newID()

	_, err := s.db.Exec(ctx, insertQuery,
		e.ID, e.MessageID, e.Recipient, e.Subject, string(e.Status), e.Error, e.Tags, e.SentAt)
	if err != nil {
		return errors.Join(ErrRecordFailed, err)
	}
	return nil
}

// RecordQueued inserts one queued row per recipient. Pass a Store built on the
// transaction that enqueues the jobs so rows and jobs commit together.
func (s *Store) RecordQueued(ctx context.Context, subject string, tags []string, recipients ...string) error {
	now := time.Now().UTC()
	for _, addr := range recipients {
		if addr = strings.TrimSpace(addr); addr == "" {
			continue
		}
		res := mailer.Result{Recipient: addr, Subject: subject, Status: StatusQueued, SentAt: now}
		if err := s.Record(ctx, res, tags...); err != nil {
			return err
		}
	}
	return nil
}

// Hook returns an after-send hook that records every result with the email's tag names.
// The insert outlives a cancelled delivery context, bounded by a short timeout.
func (s *Store) Hook() mailer.AfterSendFunc {
	return func(ctx context.Context, res mailer.Result, email *mailer.Email) {
		var tags []string
		if email != nil {
			tags = slices.Sorted(maps.Keys(email.Tags))
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hookTimeout)
		defer cancel()

		if err := s.Record(ctx, res, tags...); err != nil {
			s.logger.ErrorContext(ctx, "delivery not recorded",
				slog.String("message_id", res.MessageID),
				slog.Any("error", err),
			)
		}
	}
}

const listQuery = `SELECT id, message_id, recipient, subject, status, error, tags, sent_at
FROM email_deliveries
WHERE lower(recipient) = lower($1)
ORDER BY sent_at DESC, id
LIMIT $2`

// ListByRecipient returns the latest deliveries to addr, newest first.
// Matching ignores case. limit <= 0 uses 50; larger values are capped at 500.
func (s *Store) ListByRecipient(ctx context.Context, addr string, limit int) ([]Entry, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, ErrNoRecipient
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	rows, err := s.db.Query(ctx, listQuery, addr, limit)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e      Entry
			status string
		)
		if err := rows.Scan(&e.ID, &e.MessageID, &e.Recipient, &e.Subject, &status, &e.Error, &e.Tags, &e.SentAt); err != nil {
			return nil, errors.Join(ErrQueryFailed, err)
		}
		e.Status = mailer.Status(status)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	return entries, nil
}

// Purge deletes deliveries older than retention and returns how many were removed.
func (s *Store) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("deliverylog: retention must be positive, got %s", retention)
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM email_deliveries WHERE sent_at < $1`, time.Now().Add(-retention))
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	return tag.RowsAffected(), nil
}

func newEntry(res mailer.Result, tags []string) Entry {
	e := Entry{
		MessageID: res.MessageID,
		Recipient: res.Recipient,
		Subject:   res.Subject,
		Status:    res.Status,
		SentAt:    res.SentAt,
		Tags:      tags,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	if e.SentAt.IsZero() {
		e.SentAt = time.Now().UTC()
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e
}
