package mailer

import (
	"io/fs"
	"log/slog"
)

// Option configures the Mailer.
type Option func(*Mailer)

// WithLogger sets the logger. If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithHooks sets the filter and action registry.
// Defaults to an empty registry, reachable through Mailer.Hooks.
func WithHooks(h *Hooks) Option {
	return func(m *Mailer) {
		if h != nil {
			m.hooks = h
		}
	}
}

// WithTemplates sets the filesystem template paths resolve against.
// Defaults to Config.TemplateDir, or the working directory when that is empty.
func WithTemplates(fsys fs.FS) Option {
	return func(m *Mailer) {
		if fsys != nil {
			m.templates = fsys
		}
	}
}

// WithContentSource sets the resolver for post messages.
func WithContentSource(src ContentSource) Option {
	return func(m *Mailer) {
		if src != nil {
			m.source = src
		}
	}
}

// WithProcessor replaces the default content pipeline.
func WithProcessor(p Processor) Option {
	return func(m *Mailer) {
		if p != nil {
			m.processor = p
		}
	}
}

// WithAttachmentLoader replaces the default local file loader.
func WithAttachmentLoader(l AttachmentLoader) Option {
	return func(m *Mailer) {
		if l != nil {
			m.attachments = l
		}
	}
}

// WithMessageIDs sets the message id generator. Defaults to random UUIDs.
func WithMessageIDs(fn func() string) Option {
	return func(m *Mailer) {
		if fn != nil {
			m.newID = fn
		}
	}
}
