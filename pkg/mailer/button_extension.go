package mailer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ButtonNode is a call-to-action link written as [!button|Label](URL).
type ButtonNode struct {
	ast.BaseInline
	URL   []byte
	Label []byte
}

// KindButton is the node kind for ButtonNode.
var KindButton = ast.NewNodeKind("Button")

const buttonPrefix = "[!button|"

// DefaultButtonStyle is an inline style most mail clients honour.
const DefaultButtonStyle = "display:inline-block;padding:12px 24px;border-radius:4px;" +
	"background-color:#2563eb;color:#ffffff;text-decoration:none;font-weight:600"

func (n *ButtonNode) Kind() ast.NodeKind {
	return KindButton
}

func (n *ButtonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"URL":   string(n.URL),
		"Label": string(n.Label),
	}, nil)
}

type buttonParser struct{}

// NewButtonParser creates the inline parser for button links.
func NewButtonParser() parser.InlineParser {
	return &buttonParser{}
}

func (s *buttonParser) Trigger() []byte {
	return []byte{'['}
}

func (s *buttonParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, []byte(buttonPrefix)) {
		return nil
	}

	rest := line[len(buttonPrefix):]
	labelEnd := bytes.IndexByte(rest, ']')
	if labelEnd <= 0 || labelEnd+1 >= len(rest) || rest[labelEnd+1] != '(' {
		return nil
	}

	urlPart := rest[labelEnd+2:]
	urlEnd := bytes.IndexByte(urlPart, ')')
	if urlEnd == -1 {
		return nil
	}

	url := bytes.TrimSpace(urlPart[:urlEnd])
	if len(url) == 0 {
		return nil
	}

	block.Advance(len(buttonPrefix) + labelEnd + 2 + urlEnd + 1)

	return &ButtonNode{
		URL:   url,
		Label: bytes.TrimSpace(rest[:labelEnd]),
	}
}

type buttonRenderer struct {
	class string
	style string
	html.Config
}

// ButtonOption customises the rendered button.
type ButtonOption func(*buttonRenderer)

// WithButtonClass sets the class attribute. Default: "btn".
func WithButtonClass(class string) ButtonOption {
	return func(r *buttonRenderer) { r.class = class }
}

// WithButtonStyle sets the inline style attribute. Empty disables it.
func WithButtonStyle(style string) ButtonOption {
	return func(r *buttonRenderer) { r.style = style }
}

// NewButtonRenderer creates the node renderer for button links.
func NewButtonRenderer(opts ...ButtonOption) renderer.NodeRenderer {
	r := &buttonRenderer{
		class:  "btn",
		style:  DefaultButtonStyle,
		Config: html.NewConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, r.renderButton)
}

func (r *buttonRenderer) renderButton(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ButtonNode)

	href := n.URL
	if html.IsDangerousURL(href) {
		href = []byte("#")
	}

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(href, false)))
	_, _ = w.WriteString(`"`)
	if r.class != "" {
		_, _ = w.WriteString(` class="`)
		_, _ = w.Write(util.EscapeHTML([]byte(r.class)))
		_, _ = w.WriteString(`"`)
	}
	if r.style != "" {
		_, _ = w.WriteString(` style="`)
		_, _ = w.Write(util.EscapeHTML([]byte(r.style)))
		_, _ = w.WriteString(`"`)
	}
	_, _ = w.WriteString(` target="_blank">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)

	return ast.WalkContinue, nil
}

// ButtonExtension is a goldmark extension for button links.
type ButtonExtension struct {
	opts []ButtonOption
}

func (e *ButtonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewButtonParser(), 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewButtonRenderer(e.opts...), 50),
	))
}

// NewButtonExtension creates the button extension for goldmark.
func NewButtonExtension(opts ...ButtonOption) goldmark.Extender {
	return &ButtonExtension{opts: opts}
}
