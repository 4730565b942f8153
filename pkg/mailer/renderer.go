package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
)

// Renderer executes template files (optionally markdown) and wraps them in an HTML layout.
// Parsed templates and layouts are cached per name; rendered output never is.
type Renderer struct {
	fs fs.FS
	md goldmark.Markdown

	templateCache map[string]*cachedTemplate
	layoutCache   map[string]*template.Template
	layoutDir     string

	mu sync.RWMutex
}

type cachedTemplate struct {
	metadata map[string]any
	tmpl     *texttemplate.Template
	markdown bool
}

// RendererConfig configures the renderer.
type RendererConfig struct {
	LayoutDir string // Default: "layouts"
}

// NewRenderer creates a renderer with default config.
func NewRenderer(filesystem fs.FS) *Renderer {
	return NewRendererWithConfig(filesystem, RendererConfig{})
}

// NewRendererWithConfig creates a renderer with custom config.
func NewRendererWithConfig(filesystem fs.FS, opts RendererConfig) *Renderer {
	if opts.LayoutDir == "" {
		opts.LayoutDir = "layouts"
	}

	return &Renderer{
		fs:        filesystem,
		layoutDir: opts.LayoutDir,
		md: goldmark.New(
			goldmark.WithExtensions(NewButtonExtension()),
		),
		templateCache: make(map[string]*cachedTemplate),
		layoutCache:   make(map[string]*template.Template),
	}
}

// RenderResult contains the rendered HTML, plain text, and extracted metadata.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string // Processed markdown before HTML conversion; empty for HTML templates
}

// Subject returns the Subject frontmatter value, if any.
func (r *RenderResult) Subject() string {
	s, _ := r.Metadata["Subject"].(string)
	return s
}

// Render executes the named template with data.
// Markdown templates (.md) are converted to HTML. When layout is non-empty the
// result is wrapped in that layout, which receives .Content and .Metadata.
// {{KEY}} shortcodes in the template body are kept verbatim. A keyword such as
// {{end}} is a shortcode only when data is a TemplateData whose Vars bind it.
func (r *Renderer) Render(layout, name string, data any) (*RenderResult, error) {
	bound := boundKeywords(templateVars(data))

	cached, err := r.getTemplate(name, bound)
	if err != nil {
		return nil, err
	}

	var executed bytes.Buffer
	if err := cached.tmpl.Execute(&executed, data); err != nil {
		return nil, fmt.Errorf("%w: failed to execute template: %v", ErrRenderFailed, err)
	}

	result := &RenderResult{Metadata: cached.metadata}
	body := executed.String()

	if cached.markdown {
		result.Text = body

		var out bytes.Buffer
		if err := r.md.Convert(executed.Bytes(), &out); err != nil {
			return nil, fmt.Errorf("%w: failed to convert markdown: %v", ErrRenderFailed, err)
		}
		body = out.String()
	}

	if layout == "" {
		result.HTML = body
		return result, nil
	}

	layoutTmpl, err := r.getLayout(layout, bound)
	if err != nil {
		return nil, err
	}

	var final bytes.Buffer
	layoutData := map[string]any{
		"Content":  template.HTML(body),
		"Metadata": cached.metadata,
	}
	if err := layoutTmpl.Execute(&final, layoutData); err != nil {
		return nil, fmt.Errorf("%w: failed to execute layout: %v", ErrRenderFailed, err)
	}

	result.HTML = final.String()
	return result, nil
}

func templateVars(data any) Vars {
	switch d := data.(type) {
	case TemplateData:
		return d.Vars
	case *TemplateData:
		if d != nil {
			return d.Vars
		}
	}
	return nil
}

// cacheKey separates parses of one file that protect different keywords.
func cacheKey(name string, bound []string) string {
	if len(bound) == 0 {
		return name
	}
	return name + "\x00" + strings.Join(bound, ",")
}

func (r *Renderer) getTemplate(name string, bound []string) (*cachedTemplate, error) {
	key := cacheKey(name, bound)

	r.mu.RLock()
	if cached, ok := r.templateCache[key]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.templateCache[key]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	tmpl, err := texttemplate.New(path.Base(name)).Parse(protectShortcodes(parsed.Body, bound...))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse template body: %v", ErrRenderFailed, err)
	}

	cached := &cachedTemplate{
		metadata: parsed.Metadata,
		tmpl:     tmpl,
		markdown: strings.EqualFold(path.Ext(name), ".md"),
	}
	r.templateCache[key] = cached
	return cached, nil
}

func (r *Renderer) getLayout(name string, bound []string) (*template.Template, error) {
	key := cacheKey(name, bound)

	r.mu.RLock()
	if cached, ok := r.layoutCache[key]; ok {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.layoutCache[key]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	layoutTmpl, err := template.New(name).Parse(protectShortcodes(string(content), bound...))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse layout: %v", ErrRenderFailed, err)
	}

	r.layoutCache[key] = layoutTmpl
	return layoutTmpl, nil
}
