package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a logger writing to stdout, forwarding to Sentry when a DSN is configured.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter is New with a custom output.
// A failing Sentry initialization is reported on the logger and does not stop logging.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var out slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		out = slog.NewJSONHandler(w, opts)
	case "text":
		out = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("logger: invalid format %q", cfg.Format)
	}

	if cfg.Sentry.DSN == "" {
		return slog.New(NewLogHandlerDecorator(out, extractors...)), nil
	}

	sentryHandler, err := newSentryHandler(cfg.Sentry)
	if err != nil {
		log := slog.New(NewLogHandlerDecorator(out, extractors...))
		log.Error("failed to initialize Sentry", slog.Any("error", err))
		return log, nil
	}

	return slog.New(NewLogHandlerDecorator(newMultiHandler(out, sentryHandler), extractors...)), nil
}
