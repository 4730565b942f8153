package logger

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// newSentryHandler initializes the Sentry SDK and returns a handler forwarding to it.
func newSentryHandler(cfg SentryConfig) (slog.Handler, error) {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		return nil, err
	}

	return sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   sentryLogLevels(cfg.MinLevel),
	}.NewSentryHandler(context.Background()), nil
}

func sentryLogLevels(minLevel string) []slog.Level {
	if strings.EqualFold(strings.TrimSpace(minLevel), "error") {
		return []slog.Level{slog.LevelError}
	}
	return []slog.Level{slog.LevelWarn, slog.LevelError}
}

// Flush waits for buffered Sentry events. It is a no-op when Sentry is not initialized.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
