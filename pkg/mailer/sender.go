package mailer

import "context"

// Sender is the mail transport the mailer delegates to.
// It is called once per recipient with a fully prepared Email.
type Sender interface {
	// Send delivers an email message.
	// The Email has To, Subject and a body already set.
	// Returns an error if delivery fails.
	Send(ctx context.Context, email *Email) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(ctx context.Context, email *Email) error

// Send implements Sender.
func (f SenderFunc) Send(ctx context.Context, email *Email) error {
	return f(ctx, email)
}
