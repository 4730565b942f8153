// Package logger builds the slog loggers used across mailhelper.
//
// Loggers write JSON (or text) to stdout and, when SENTRY_DSN is set, forward
// warnings and errors to Sentry. Context extractors add per-delivery values to
// every record:
//
//	log, err := logger.New(cfg,
//		mailer.MessageIDExtractor(),
//		mailer.RecipientExtractor(),
//	)
//	if err != nil {
//		return err
//	}
//	defer logger.Flush(2 * time.Second)
//
// Records logged inside a delivery then carry message_id and recipient:
//
//	{"level":"INFO","msg":"email delivered","subject":"Welcome","message_id":"6f1c...","recipient":"alice@example.com"}
//
// Errors create Sentry Issues. SENTRY_MIN_LEVEL=error stops warnings from
// being stored as Sentry logs. A failing Sentry initialization is logged and
// the logger keeps writing to stdout.
//
// [LogHandlerDecorator] wraps any slog.Handler with extractors, and
// [NewNope] returns a discarding logger for components built without one.
package logger
