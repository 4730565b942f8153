package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mailhelper/pkg/content"
)

// MessageType selects how a message string is turned into a body.
type MessageType string

const (
	// MessageContent treats the message as the body itself.
	MessageContent MessageType = "content"
	// MessageTemplate treats the message as a template file path.
	MessageTemplate MessageType = "template"
	// MessagePost treats the message as a content object id.
	MessagePost MessageType = "post"
)

// ParseMessageType maps a selector string to a MessageType.
// Unknown values fall back to MessageContent.
func ParseMessageType(s string) MessageType {
	switch t := MessageType(strings.ToLower(strings.TrimSpace(s))); t {
	case MessageTemplate, MessagePost:
		return t
	default:
		return MessageContent
	}
}

// Processor formats a body before delivery.
// *content.Pipeline implements it.
type Processor interface {
	Process(ctx context.Context, body string) string
}

// ContentSource resolves content object ids into bodies.
// Implementations in pkg/content return content.ErrNotFound for unknown ids.
type ContentSource interface {
	Content(ctx context.Context, id int64) (string, error)
}

// TemplateData is passed to template files.
type TemplateData struct {
	Data any  // Caller-supplied data
	Vars Vars // Content variables; {{KEY}} shortcodes are replaced after rendering
}

// resolveTemplate renders a template file and reports its frontmatter subject.
func (n *Notification) resolveTemplate(ctx context.Context, name string) (string, error) {
	r := n.mailer.renderer
	if n.renderer != nil {
		r = n.renderer
	}

	result, err := r.Render(n.layout, name, TemplateData{Data: n.data, Vars: n.contentVars})
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return "", fmt.Errorf("%w: %s", ErrInvalidTemplatePath, name)
		}
		return "", err
	}

	if n.subject == "" {
		n.subject = result.Subject()
	}
	n.text = result.Text

	return n.mailer.process(ctx, result.HTML), nil
}

// resolvePost fetches a content object. Ids that are not positive integers
// and objects that do not exist resolve to an empty body.
func (n *Notification) resolvePost(ctx context.Context, ref string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64)
	if err != nil || id <= 0 {
		n.mailer.logger.DebugContext(ctx, "post reference is not a positive id", "ref", ref)
		return "", nil
	}

	if n.mailer.source == nil {
		n.mailer.logger.WarnContext(ctx, "post message without a content source", "post_id", id)
		return "", nil
	}

	body, err := n.mailer.source.Content(ctx, id)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to load post %d: %w", id, err)
	}

	if n.mailer.config.SanitizePosts {
		body = content.Sanitize(body)
	}

	return n.mailer.process(ctx, body), nil
}

// renderComponent renders a templ component into a body.
func (n *Notification) renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("%w: failed to render component: %v", ErrRenderFailed, err)
	}
	return n.mailer.process(ctx, buf.String()), nil
}
