// Package logsender provides a mailer.Sender that logs emails instead of delivering them.
// Intended for local development and tests.
package logsender

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/dmitrymomot/mailhelper/pkg/mailer"
)

// Sender logs every email. With WithRecording it also keeps a copy in memory.
type Sender struct {
	logger *slog.Logger
	sent   []mailer.Email
	mu     sync.Mutex
	record bool
}

// Option configures a Sender.
type Option func(*Sender)

// WithRecording keeps every sent email for Sent. Recorded emails are never
// evicted, so use it in tests only.
func WithRecording() Option {
	return func(s *Sender) { s.record = true }
}

// New creates a logging sender. A nil logger uses slog.Default.
func New(logger *slog.Logger, opts ...Option) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sender{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send implements mailer.Sender.
func (s *Sender) Send(ctx context.Context, email *mailer.Email) error {
	if s.record {
		s.mu.Lock()
		s.sent = append(s.sent, *email)
		s.mu.Unlock()
	}

	s.logger.InfoContext(ctx, "email",
		slog.String("message_id", email.ID),
		slog.Any("to", email.To),
		slog.String("from", email.Sender()),
		slog.String("subject", email.Subject),
		slog.Int("html_bytes", len(email.HTML)),
		slog.String("text", email.Text),
		slog.Int("attachments", len(email.Attachments)),
	)
	return nil
}

// Sent returns copies of the recorded emails, oldest first.
func (s *Sender) Sent() []mailer.Email {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sent)
}

// Reset forgets the received emails.
func (s *Sender) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = nil
}
