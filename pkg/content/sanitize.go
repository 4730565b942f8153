package content

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy    *bluemonday.Policy
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
		ugcPolicy.AllowAttrs("style").OnElements("p", "span", "div", "td", "th", "table")
		strictPolicy = bluemonday.StrictPolicy()
	})
}

var (
	bracketed   = regexp.MustCompile(`\[[^\[\]]*\]`)
	blockEnd    = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|div|h[1-6]|li|tr|table|blockquote|pre)>`)
	bodyContent = regexp.MustCompile(`(?is)<body[^>]*>(.*)</body>`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips scripts, event handlers and unsafe URLs while keeping
// formatting markup. Quotes inside [shortcodes] are kept intact.
func Sanitize(s string) string {
	initPolicies()
	out := ugcPolicy.Sanitize(s)
	return bracketed.ReplaceAllStringFunc(out, func(m string) string {
		return strings.NewReplacer("&#34;", `"`, "&#39;", "'", "&quot;", `"`).Replace(m)
	})
}

// PlainText renders HTML as readable plain text for the text/plain alternative.
// For a full document only the body is used.
func PlainText(s string) string {
	if m := bodyContent.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if !strings.ContainsAny(s, "<>&") {
		return strings.TrimSpace(s)
	}

	initPolicies()
	s = blockEnd.ReplaceAllStringFunc(s, func(m string) string { return m + "\n" })
	s = html.UnescapeString(strictPolicy.Sanitize(s))

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	s = strings.Join(lines, "\n")

	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}
