package content

import (
	"context"
	"html"
	"regexp"
)

// Embedder turns a URL that stands alone on a line into markup.
// It reports false to leave the URL as it is.
type Embedder interface {
	Embed(ctx context.Context, url string) (string, bool)
}

// EmbedderFunc adapts a function to the Embedder interface.
type EmbedderFunc func(ctx context.Context, url string) (string, bool)

// Embed implements Embedder.
func (f EmbedderFunc) Embed(ctx context.Context, url string) (string, bool) {
	return f(ctx, url)
}

// LinkEmbedder renders the URL as a plain link.
type LinkEmbedder struct{}

// Embed implements Embedder.
func (LinkEmbedder) Embed(_ context.Context, url string) (string, bool) {
	u := html.EscapeString(url)
	return `<a href="` + u + `">` + u + `</a>`, true
}

var standaloneURL = regexp.MustCompile(`(?m)^([ \t]*)(https?://[^\s<>"]+)([ \t]*)$`)

// AutoEmbed passes every line holding only a URL to e.
func AutoEmbed(ctx context.Context, text string, e Embedder) string {
	if e == nil {
		return text
	}
	return standaloneURL.ReplaceAllStringFunc(text, func(line string) string {
		m := standaloneURL.FindStringSubmatch(line)
		out, ok := e.Embed(ctx, m[2])
		if !ok {
			return line
		}
		return m[1] + out + m[3]
	})
}
