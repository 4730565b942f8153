package mailer

import (
	"fmt"
	"time"
)

// Tags represents email tags/categories that can be either presence-only
// (using struct{}{}) or key-value pairs (using string values).
// Transports that support tagging convert them to their own format.
type Tags map[string]any

// SimpleTags creates presence-only tags from a list of tag names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a single outgoing message handed to a Sender.
// The mailer builds one Email per recipient.
type Email struct {
	Tags        Tags         // Provider-specific tags/categories
	ID          string       // Message identifier, unique per delivery
	From        string       // Filtered sender; wins over the From header
	Subject     string       // Subject with variables substituted
	HTML        string       // HTML body (set when the content type is text/html)
	Text        string       // Plain text body or alternative
	To          []string     // Recipients (at least one required)
	Headers     []string     // Raw "Name: value" header lines
	Attachments []Attachment // Loaded attachments
}

// Header parses the raw header lines of the email.
func (e *Email) Header() Header {
	return ParseHeaders(e.Headers)
}

// Sender resolves the sender address: the From field, then the From header.
// Returns an empty string when neither is set.
func (e *Email) Sender() string {
	if e.From != "" {
		return e.From
	}
	return e.Header().From
}

// Attachment represents an email attachment.
type Attachment struct {
	Path        string // Source path the attachment was loaded from
	Filename    string // Display name for the attachment
	ContentType string // MIME type (e.g., "application/pdf")
	ContentID   string // Optional Content-ID for inline attachments
	Content     []byte // Raw file content
}

// Status is the outcome of one transport call.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// Result records the delivery of one Email to one recipient.
type Result struct {
	SentAt    time.Time
	Err       error
	MessageID string
	Recipient string
	Subject   string
	Status    Status
}

// OK reports whether the transport accepted the message.
func (r Result) OK() bool {
	return r.Status == StatusSent
}
