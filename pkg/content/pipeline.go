package content

import "context"

// Step transforms a body.
type Step func(ctx context.Context, body string) string

// Pipeline runs steps in order.
type Pipeline struct {
	steps []Step
}

// New creates a pipeline from steps. Nil steps are skipped.
func New(steps ...Step) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0, len(steps))}
	for _, s := range steps {
		if s != nil {
			p.steps = append(p.steps, s)
		}
	}
	return p
}

// Process runs body through every step.
func (p *Pipeline) Process(ctx context.Context, body string) string {
	for _, s := range p.steps {
		body = s(ctx, body)
	}
	return body
}

// Option configures the default pipeline.
type Option func(*defaults)

type defaults struct {
	embedder   Embedder
	shortcodes *Shortcodes
	smilies    bool
}

// WithEmbedder sets the embedder for URLs alone on a line. Defaults to LinkEmbedder.
func WithEmbedder(e Embedder) Option {
	return func(d *defaults) {
		if e != nil {
			d.embedder = e
		}
	}
}

// WithShortcodes sets the shortcode registry. Defaults to an empty registry.
func WithShortcodes(s *Shortcodes) Option {
	return func(d *defaults) {
		if s != nil {
			d.shortcodes = s
		}
	}
}

// WithoutSmilies disables smiley conversion.
func WithoutSmilies() Option {
	return func(d *defaults) {
		d.smilies = false
	}
}

// Default returns the standard formatting pipeline:
// texturize, smilies, character conversion, auto-embed, auto-paragraphs,
// shortcode unwrapping and shortcode expansion.
func Default(opts ...Option) *Pipeline {
	d := &defaults{
		embedder:   LinkEmbedder{},
		shortcodes: NewShortcodes(),
		smilies:    true,
	}
	for _, opt := range opts {
		opt(d)
	}

	var smilies Step
	if d.smilies {
		smilies = plain(ConvertSmilies)
	}

	return New(
		plain(Texturize),
		smilies,
		plain(ConvertChars),
		func(ctx context.Context, body string) string {
			return AutoEmbed(ctx, body, d.embedder)
		},
		plain(func(body string) string { return Autop(body, true) }),
		plain(d.shortcodes.Unautop),
		d.shortcodes.Do,
	)
}

func plain(fn func(string) string) Step {
	return func(_ context.Context, body string) string {
		return fn(body)
	}
}
