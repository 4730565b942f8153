package mailer

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/dmitrymomot/mailhelper/pkg/content"
	"github.com/dmitrymomot/mailhelper/pkg/logger"
)

//go:embed views/*.html
var views embed.FS

// TestTemplate is the built-in template SendTest delivers.
const TestTemplate = "views/email-boilerplate.html"

// TestVar is the variable SendTest fills with the recipient address.
const TestVar = "EMAIL_ADDRESS"

// Mailer assembles notifications and delivers them through a Sender, one recipient at a time.
type Mailer struct {
	sender      Sender
	renderer    *Renderer
	builtin     *Renderer
	templates   fs.FS
	source      ContentSource
	processor   Processor
	attachments AttachmentLoader
	hooks       *Hooks
	logger      *slog.Logger
	newID       func() string
	config      Config
}

// New creates a Mailer that delivers through sender.
func New(sender Sender, cfg Config, opts ...Option) *Mailer {
	m := &Mailer{
		sender:      sender,
		config:      cfg,
		processor:   content.Default(),
		attachments: FileLoader{},
		hooks:       NewHooks(),
		logger:      logger.NewNope(),
		newID:       uuid.NewString,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.templates == nil {
		if cfg.TemplateDir != "" {
			m.templates = os.DirFS(cfg.TemplateDir)
		} else {
			m.templates = osFS{}
		}
	}

	m.renderer = NewRendererWithConfig(m.templates, RendererConfig{LayoutDir: cfg.LayoutDir})
	m.builtin = NewRenderer(views)

	return m
}

// Hooks returns the filter and action registry.
func (m *Mailer) Hooks() *Hooks {
	return m.hooks
}

// SendParams describes one notification.
type SendParams struct {
	Data        any             // Template data, available as .Data
	Component   templ.Component // Rendered as the body instead of Message when set
	TemplateFS  fs.FS           // Overrides the mailer's template filesystem for this send
	Tags        Tags            // Provider tags
	ContentVars Vars            // {{KEY}} values for the body
	SubjectVars Vars            // {{KEY}} values for the subject

	From        string
	Subject     string      // Falls back to the template's Subject frontmatter
	Message     string      // Body, template path or post id, depending on MessageType
	MessageType MessageType // Defaults to MessageContent
	Layout      string      // Overrides Config.DefaultLayout for template messages

	To          []string
	CC          []string
	BCC         []string
	Headers     []string // Raw "Name: value" lines; defaults to MIME-Version and HTML Content-Type
	Attachments []string // Local paths or s3:// keys
}

// Build assembles a Notification from params without sending it.
func (m *Mailer) Build(ctx context.Context, p SendParams) (*Notification, error) {
	n := m.NewNotification().
		SetVars(p.ContentVars, p.SubjectVars).
		SetTo(p.To...).
		SetFrom(p.From).
		SetCc(p.CC...).
		SetBcc(p.BCC...).
		SetSubject(p.Subject).
		SetData(p.Data).
		SetLayout(p.Layout).
		SetTemplates(p.TemplateFS).
		SetTags(p.Tags)

	var err error
	if p.Component != nil {
		err = n.SetComponent(ctx, p.Component)
	} else {
		err = n.SetContent(ctx, p.Message, p.MessageType)
	}
	if err != nil {
		return nil, err
	}

	n.SetHeaders(p.Headers...).SetAttachments(p.Attachments...)
	return n, nil
}

// Send builds a notification from params and dispatches it.
func (m *Mailer) Send(ctx context.Context, p SendParams) ([]Result, error) {
	n, err := m.Build(ctx, p)
	if err != nil {
		return nil, err
	}
	return m.Dispatch(ctx, n)
}

// Dispatch validates n and delivers it to each recipient in order.
// A failed delivery does not stop the loop: every recipient gets a Result,
// and the returned error joins ErrSendFailed with each transport error.
func (m *Mailer) Dispatch(ctx context.Context, n *Notification) ([]Result, error) {
	if err := n.Validate(); err != nil {
		return nil, err
	}

	attachments := m.loadAttachments(ctx, n.attachments)

	results := make([]Result, 0, len(n.to))
	var errs []error
	for _, to := range n.to {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		res := m.deliver(ctx, n, to, attachments)
		results = append(results, res)
		if res.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", to, res.Err))
		}
	}

	if len(errs) > 0 {
		return results, errors.Join(append([]error{ErrSendFailed}, errs...)...)
	}
	return results, nil
}

func (m *Mailer) deliver(ctx context.Context, n *Notification, to string, attachments []Attachment) Result {
	id := m.newID()
	ctx = withDelivery(ctx, id, to)

	subject := m.hooks.filterSubject(ctx, ReplaceVars(n.subject, n.subjectVars))
	body := m.hooks.filterContent(ctx, ReplaceVars(n.content, n.contentVars))
	from := m.hooks.filterFrom(ctx, n.from)
	headers := m.hooks.filterHeaders(ctx, slices.Clone(n.headers))

	email := &Email{
		ID:          id,
		To:          []string{to},
		From:        from,
		Subject:     subject,
		Headers:     headers,
		Attachments: slices.Clone(attachments),
		Tags:        n.tags,
	}
	if ParseHeaders(headers).IsHTML() {
		email.HTML = body
		if n.text != "" {
			email.Text = ReplaceVars(n.text, n.contentVars)
		} else {
			email.Text = content.PlainText(body)
		}
	} else {
		email.Text = body
	}

	m.hooks.runBefore(ctx, email)

	res := Result{
		MessageID: email.ID,
		Recipient: to,
		Subject:   email.Subject,
		Status:    StatusSent,
	}
	if err := m.sender.Send(ctx, email); err != nil {
		res.Status = StatusFailed
		res.Err = err
		m.logger.ErrorContext(ctx, "email delivery failed", "subject", email.Subject, "error", err)
	} else {
		m.logger.InfoContext(ctx, "email delivered", "subject", email.Subject)
	}
	res.SentAt = time.Now().UTC()

	m.hooks.runAfter(ctx, res, email)
	return res
}

// SendTest delivers the built-in test email to the given address,
// which is also used as the sender.
func (m *Mailer) SendTest(ctx context.Context, to string) ([]Result, error) {
	vars := Vars{TestVar: to}

	n := m.NewNotification().
		SetVars(vars, vars).
		SetTo(to).
		SetFrom(to).
		SetSubject("Test email for " + Shortcode(TestVar))
	n.renderer = m.builtin
	n.layout = ""

	if err := n.SetContent(ctx, TestTemplate, MessageTemplate); err != nil {
		return nil, err
	}
	n.SetHeaders()

	return m.Dispatch(ctx, n)
}

// SendRaw sends a prebuilt email without rendering, substitution or hooks.
func (m *Mailer) SendRaw(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}
	if email.Subject == "" {
		return ErrNoSubject
	}
	if email.HTML == "" && email.Text == "" {
		return ErrNoContent
	}
	if email.ID == "" {
		email.ID = m.newID()
	}

	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}

	return nil
}

func (m *Mailer) process(ctx context.Context, body string) string {
	if body == "" {
		return ""
	}
	return m.processor.Process(ctx, body)
}

// osFS opens paths as given, relative to the working directory or absolute.
type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}
