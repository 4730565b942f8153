package mailer

import (
	"context"
	"io/fs"
	"maps"
	"slices"
	"strings"

	"github.com/a-h/templ"
)

// Notification is a pending email assembled by setters and delivered by
// Mailer.Dispatch. It lives for one send and is not safe for concurrent use.
type Notification struct {
	mailer   *Mailer
	renderer *Renderer

	data   any
	layout string
	tags   Tags

	from    string
	subject string
	content string
	text    string

	to          []string
	cc          []string
	bcc         []string
	headers     []string
	attachments []string

	subjectVars Vars
	contentVars Vars
}

// NewNotification starts an empty notification bound to the mailer.
func (m *Mailer) NewNotification() *Notification {
	return &Notification{mailer: m, layout: m.config.DefaultLayout}
}

// SetTo replaces the recipient list. Empty entries are dropped.
func (n *Notification) SetTo(addrs ...string) *Notification {
	n.to = compact(addrs)
	return n
}

// SetFrom sets the sender and adds From, Reply-To and Return-Path headers for it.
func (n *Notification) SetFrom(from string) *Notification {
	n.from = strings.TrimSpace(from)
	if n.from != "" {
		n.headers = append(n.headers,
			headerLine(HeaderFrom, n.from),
			headerLine(HeaderReplyTo, n.from),
			headerLine(HeaderReturnPath, n.from),
		)
	}
	return n
}

// SetCc replaces the carbon copy list and adds a CC header when it is non-empty.
func (n *Notification) SetCc(addrs ...string) *Notification {
	n.cc = compact(addrs)
	if len(n.cc) > 0 {
		n.headers = append(n.headers, headerLine(HeaderCC, strings.Join(n.cc, ",")))
	}
	return n
}

// SetBcc replaces the blind carbon copy list and adds a BCC header when it is non-empty.
func (n *Notification) SetBcc(addrs ...string) *Notification {
	n.bcc = compact(addrs)
	if len(n.bcc) > 0 {
		n.headers = append(n.headers, headerLine(HeaderBCC, strings.Join(n.bcc, ",")))
	}
	return n
}

// SetSubject sets the subject. {{KEY}} shortcodes are replaced per recipient.
func (n *Notification) SetSubject(subject string) *Notification {
	n.subject = subject
	return n
}

// SetData sets the data template files are executed with.
func (n *Notification) SetData(data any) *Notification {
	n.data = data
	return n
}

// SetLayout overrides the configured default layout for template messages.
// An empty layout keeps the default.
func (n *Notification) SetLayout(layout string) *Notification {
	if layout != "" {
		n.layout = layout
	}
	return n
}

// SetTemplates resolves template paths against fsys instead of the mailer's filesystem.
func (n *Notification) SetTemplates(fsys fs.FS) *Notification {
	if fsys != nil {
		n.renderer = NewRendererWithConfig(fsys, RendererConfig{LayoutDir: n.mailer.config.LayoutDir})
	}
	return n
}

// SetTags sets provider tags copied onto every Email.
func (n *Notification) SetTags(tags Tags) *Notification {
	n.tags = tags
	return n
}

// SetContent resolves message into the body according to typ.
// A template path that does not resolve to a file fails with ErrInvalidTemplatePath.
// A post reference that is not a positive id, or does not exist, leaves the body empty.
func (n *Notification) SetContent(ctx context.Context, message string, typ MessageType) error {
	var (
		body string
		err  error
	)

	n.text = ""
	switch typ {
	case MessageTemplate:
		body, err = n.resolveTemplate(ctx, message)
	case MessagePost:
		body, err = n.resolvePost(ctx, message)
	default:
		body = n.mailer.process(ctx, message)
	}
	if err != nil {
		return err
	}

	n.content = body
	return nil
}

// SetComponent renders a templ component into the body.
func (n *Notification) SetComponent(ctx context.Context, c templ.Component) error {
	if c == nil {
		n.content = ""
		return nil
	}

	body, err := n.renderComponent(ctx, c)
	if err != nil {
		return err
	}

	n.text = ""
	n.content = body
	return nil
}

// SetHeaders prepends lines to the accumulated headers.
// Without lines the MIME-Version and HTML Content-Type defaults are used.
func (n *Notification) SetHeaders(lines ...string) *Notification {
	given := compact(lines)
	if len(given) == 0 {
		given = defaultHeaders()
	}
	n.headers = append(given, n.headers...)
	return n
}

// SetAttachments replaces the attachment paths. Paths prefixed with s3:// are object keys.
func (n *Notification) SetAttachments(paths ...string) *Notification {
	n.attachments = compact(paths)
	return n
}

// SetVars replaces the content and subject variables.
// Each map is only replaced when it is non-empty.
func (n *Notification) SetVars(contentVars, subjectVars Vars) *Notification {
	if len(contentVars) > 0 {
		n.contentVars = maps.Clone(contentVars)
	}
	if len(subjectVars) > 0 {
		n.subjectVars = maps.Clone(subjectVars)
	}
	return n
}

// Validate reports the first missing required field:
// recipient, then subject, then content.
func (n *Notification) Validate() error {
	if len(n.to) == 0 {
		return ErrNoRecipient
	}
	if strings.TrimSpace(n.subject) == "" {
		return ErrNoSubject
	}
	if strings.TrimSpace(n.content) == "" {
		return ErrNoContent
	}
	return nil
}

// To returns a copy of the recipient list.
func (n *Notification) To() []string { return slices.Clone(n.to) }

// From returns the sender.
func (n *Notification) From() string { return n.from }

// Subject returns the subject before variable substitution.
func (n *Notification) Subject() string { return n.subject }

// Content returns the body before variable substitution.
func (n *Notification) Content() string { return n.content }

// Headers returns a copy of the accumulated header lines.
func (n *Notification) Headers() []string { return slices.Clone(n.headers) }

// Attachments returns a copy of the attachment paths.
func (n *Notification) Attachments() []string { return slices.Clone(n.attachments) }

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
