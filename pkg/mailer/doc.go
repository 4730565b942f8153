// Package mailer builds templated email notifications and delivers them
// through a pluggable transport, one recipient at a time.
//
// # Architecture
//
//   - Sender: interface mail transports implement (see the resend, ses, smtp and logsender subpackages)
//   - Notification: a pending email assembled by chaining setters
//   - Renderer: turns template files with YAML frontmatter into HTML
//   - Processor: formats bodies before delivery (pkg/content provides the default pipeline)
//   - Hooks: filters and actions run around every delivery
//
// # Usage
//
//	m := mailer.New(sender, mailer.Config{DefaultLayout: "base.html"},
//		mailer.WithTemplates(emails.FS),
//		mailer.WithLogger(log),
//	)
//
//	results, err := m.Send(ctx, mailer.SendParams{
//		To:          []string{"alice@example.com", "bob@example.com"},
//		From:        mailer.Recipient("Team", "team@example.com"),
//		Subject:     "Welcome {{NAME}}",
//		Message:     "welcome.md",
//		MessageType: mailer.MessageTemplate,
//		Data:        map[string]any{"URL": "https://example.com/start"},
//		SubjectVars: mailer.Vars{"NAME": "friend"},
//	})
//
// Each recipient receives its own Email with a fresh message id.
// A failed delivery does not stop the loop; the returned error wraps
// ErrSendFailed and the per-recipient Results tell which ones failed.
//
// # Message types
//
// The message string is interpreted according to MessageType:
//
//   - MessageContent: the body itself
//   - MessageTemplate: a template path, resolved against the template filesystem
//   - MessagePost: a content object id, resolved through the ContentSource
//
// A templ.Component can be passed instead of a message.
//
// # Templates
//
// Templates are markdown (.md) or HTML files with optional frontmatter:
//
//	---
//	Subject: Welcome {{NAME}}
//	---
//	Hello {{.Data.Name}}!
//
//	[!button|Get Started]({{.Data.URL}})
//
// Go template actions run at render time with TemplateData.
// {{KEY}} shortcodes survive rendering and are replaced per recipient
// from the content and subject Vars.
//
// # Headers
//
// Headers are raw "Name: value" lines. Without explicit headers the
// MIME-Version and text/html Content-Type defaults are used. A non-HTML
// Content-Type sends the body as plain text.
//
// # Errors
//
//   - ErrNoRecipient, ErrNoSubject, ErrNoContent: validation, checked in that order
//   - ErrInvalidTemplatePath: a template message whose path does not exist
//   - ErrTemplateNotFound, ErrLayoutNotFound, ErrRenderFailed: renderer failures
//   - ErrSendFailed: at least one delivery failed
//   - ErrAttachmentFailed: an attachment could not be loaded (logged and skipped during sends)
package mailer
