package tasks

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/dmitrymomot/mailhelper/pkg/mailer"
)

// ErrNotSerializable is returned for send params that cannot cross a queue:
// templ components and per-send template filesystems live only in memory.
var ErrNotSerializable = errors.New("tasks: send params are not serializable")

// SendPayload is the JSON form of mailer.SendParams.
type SendPayload struct {
	Data        map[string]any    `json:"data,omitempty"`
	ContentVars map[string]string `json:"content_vars,omitempty"`
	SubjectVars map[string]string `json:"subject_vars,omitempty"`
	// Tags with an empty value are presence-only.
	Tags map[string]string `json:"tags,omitempty"`

	From        string `json:"from,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Message     string `json:"message"`
	MessageType string `json:"message_type,omitempty"`
	Layout      string `json:"layout,omitempty"`

	To          []string `json:"to"`
	CC          []string `json:"cc,omitempty"`
	BCC         []string `json:"bcc,omitempty"`
	Headers     []string `json:"headers,omitempty"`
	Attachments []string `json:"attachments,omitempty"`
}

// NewSendPayload converts params into a payload.
// Data must be a map to survive JSON encoding with field access intact.
func NewSendPayload(p mailer.SendParams) (SendPayload, error) {
	if p.Component != nil || p.TemplateFS != nil {
		return SendPayload{}, ErrNotSerializable
	}

	var data map[string]any
	switch d := p.Data.(type) {
	case nil:
	case map[string]any:
		data = d
	default:
		return SendPayload{}, ErrNotSerializable
	}

	var tags map[string]string
	if len(p.Tags) > 0 {
		tags = make(map[string]string, len(p.Tags))
		for k, v := range p.Tags {
			if s, ok := v.(string); ok {
				tags[k] = s
			} else {
				tags[k] = ""
			}
		}
	}

	return SendPayload{
		Data:        data,
		ContentVars: p.ContentVars,
		SubjectVars: p.SubjectVars,
		Tags:        tags,
		From:        p.From,
		Subject:     p.Subject,
		Message:     p.Message,
		MessageType: string(p.MessageType),
		Layout:      p.Layout,
		To:          p.To,
		CC:          p.CC,
		BCC:         p.BCC,
		Headers:     p.Headers,
		Attachments: p.Attachments,
	}, nil
}

// Validate rejects payloads without a usable recipient.
// Subject and content are checked by the mailer once templates are resolved.
func (p SendPayload) Validate() error {
	if !slices.ContainsFunc(p.To, func(s string) bool { return strings.TrimSpace(s) != "" }) {
		return mailer.ErrNoRecipient
	}
	return nil
}

// Params converts the payload back into send params.
func (p SendPayload) Params() mailer.SendParams {
	var tags mailer.Tags
	if len(p.Tags) > 0 {
		tags = make(mailer.Tags, len(p.Tags))
		for k, v := range p.Tags {
			if v == "" {
				tags[k] = struct{}{}
			} else {
				tags[k] = v
			}
		}
	}

	var data any
	if p.Data != nil {
		data = p.Data
	}

	return mailer.SendParams{
		Data:        data,
		Tags:        tags,
		ContentVars: mailer.Vars(p.ContentVars),
		SubjectVars: mailer.Vars(p.SubjectVars),
		From:        p.From,
		Subject:     p.Subject,
		Message:     p.Message,
		MessageType: mailer.ParseMessageType(p.MessageType),
		Layout:      p.Layout,
		To:          slices.Clone(p.To),
		CC:          slices.Clone(p.CC),
		BCC:         slices.Clone(p.BCC),
		Headers:     slices.Clone(p.Headers),
		Attachments: slices.Clone(p.Attachments),
	}
}

// withRecipients returns a copy of p addressed to to.
func (p SendPayload) withRecipients(to ...string) SendPayload {
	c := p
	c.To = to
	c.CC = slices.Clone(p.CC)
	c.BCC = slices.Clone(p.BCC)
	c.Headers = slices.Clone(p.Headers)
	c.Attachments = slices.Clone(p.Attachments)
	c.ContentVars = maps.Clone(p.ContentVars)
	c.SubjectVars = maps.Clone(p.SubjectVars)
	c.Tags = maps.Clone(p.Tags)
	return c
}
