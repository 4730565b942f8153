package mailer

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/mailhelper/pkg/logger"
)

type (
	messageIDKey struct{}
	recipientKey struct{}
)

func withDelivery(ctx context.Context, messageID, recipient string) context.Context {
	ctx = context.WithValue(ctx, messageIDKey{}, messageID)
	return context.WithValue(ctx, recipientKey{}, recipient)
}

// MessageIDFromContext returns the id of the message being delivered.
// Set for hooks and transports during a send.
func MessageIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(messageIDKey{}).(string)
	return v
}

// RecipientFromContext returns the recipient of the message being delivered.
func RecipientFromContext(ctx context.Context) string {
	v, _ := ctx.Value(recipientKey{}).(string)
	return v
}

// MessageIDExtractor adds "message_id" to log entries written during a delivery.
func MessageIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := MessageIDFromContext(ctx); v != "" {
			return slog.String("message_id", v), true
		}
		return slog.Attr{}, false
	}
}

// RecipientExtractor adds "recipient" to log entries written during a delivery.
func RecipientExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v := RecipientFromContext(ctx); v != "" {
			return slog.String("recipient", v), true
		}
		return slog.Attr{}, false
	}
}
