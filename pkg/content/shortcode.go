package content

import (
	"context"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// ShortcodeHandler renders one [name attr="v"]inner[/name] occurrence.
// inner is empty for self-closing shortcodes.
type ShortcodeHandler func(ctx context.Context, attrs map[string]string, inner string) string

// Shortcodes is a registry of shortcode handlers. Safe for concurrent use.
type Shortcodes struct {
	handlers map[string]ShortcodeHandler
	mu       sync.RWMutex
}

// NewShortcodes creates an empty registry.
func NewShortcodes() *Shortcodes {
	return &Shortcodes{handlers: make(map[string]ShortcodeHandler)}
}

// Add registers fn for name, replacing any previous handler.
func (s *Shortcodes) Add(name string, fn ShortcodeHandler) *Shortcodes {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || fn == nil {
		return s
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[name] = fn
	return s
}

// Remove unregisters name.
func (s *Shortcodes) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, strings.ToLower(name))
}

// Names returns the registered names, sorted.
func (s *Shortcodes) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.handlers))
	for n := range s.handlers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (s *Shortcodes) handler(name string) (ShortcodeHandler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.handlers[strings.ToLower(name)]
	return fn, ok
}

// Do replaces registered shortcodes in text with their handler output.
// Unknown shortcodes are left as they are; [[name]] escapes to a literal [name].
func (s *Shortcodes) Do(ctx context.Context, text string) string {
	if !strings.Contains(text, "[") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for {
		start := strings.IndexByte(text, '[')
		if start == -1 {
			b.WriteString(text)
			break
		}
		b.WriteString(text[:start])
		text = text[start:]

		sc, ok := s.parse(text)
		if !ok {
			b.WriteByte('[')
			text = text[1:]
			continue
		}

		if sc.escaped {
			b.WriteString(text[1 : sc.length-1])
		} else {
			fn, _ := s.handler(sc.name)
			b.WriteString(fn(ctx, sc.attrs, sc.inner))
		}
		text = text[sc.length:]
	}

	return b.String()
}

type shortcode struct {
	attrs   map[string]string
	name    string
	inner   string
	length  int
	escaped bool
}

var shortcodeName = regexp.MustCompile(`^\[(\[?)([A-Za-z0-9_-]+)`)

// parse reads a registered shortcode at the start of text.
func (s *Shortcodes) parse(text string) (shortcode, bool) {
	m := shortcodeName.FindStringSubmatch(text)
	if m == nil {
		return shortcode{}, false
	}
	escaped := m[1] == "["
	name := m[2]
	if _, ok := s.handler(name); !ok {
		return shortcode{}, false
	}

	pos := len(m[0])
	if pos < len(text) && !strings.ContainsRune(" \t\n/]", rune(text[pos])) {
		return shortcode{}, false
	}

	end, selfClosing := tagEnd(text, pos)
	if end == -1 {
		return shortcode{}, false
	}

	rawAttrs := strings.TrimSpace(text[pos:end])
	rawAttrs = strings.TrimSpace(strings.TrimSuffix(rawAttrs, "/"))

	sc := shortcode{
		name:  strings.ToLower(name),
		attrs: ParseAttrs(rawAttrs),
	}

	length := end + 1
	if !selfClosing {
		closing := "[/" + name + "]"
		if i := strings.Index(strings.ToLower(text[length:]), strings.ToLower(closing)); i != -1 {
			sc.inner = text[length : length+i]
			length += i + len(closing)
		}
	}

	if escaped {
		if length >= len(text) || text[length] != ']' {
			return shortcode{}, false
		}
		length++
		sc.escaped = true
	}

	sc.length = length
	return sc, true
}

// tagEnd finds the ']' closing the opening tag, skipping quoted values.
func tagEnd(text string, pos int) (int, bool) {
	var quote byte
	for i := pos; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '[':
			return -1, false
		case c == ']':
			return i, i > pos && text[i-1] == '/'
		}
	}
	return -1, false
}

var attrPattern = regexp.MustCompile(
	`([\w-]+)\s*=\s*"([^"]*)"(?:\s|$)|` +
		`([\w-]+)\s*=\s*'([^']*)'(?:\s|$)|` +
		`([\w-]+)\s*=\s*([^\s'"]+)(?:\s|$)|` +
		`"([^"]*)"(?:\s|$)|` +
		`'([^']*)'(?:\s|$)|` +
		`(\S+)(?:\s|$)`)

// ParseAttrs parses shortcode attributes. Named attributes are keyed by
// lower-cased name; positional values are keyed "0", "1", ...
func ParseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	if raw == "" {
		return attrs
	}

	positional := 0
	addPositional := func(v string) {
		attrs[strconv.Itoa(positional)] = v
		positional++
	}

	for _, m := range attrPattern.FindAllStringSubmatch(raw+" ", -1) {
		switch {
		case m[1] != "":
			attrs[strings.ToLower(m[1])] = m[2]
		case m[3] != "":
			attrs[strings.ToLower(m[3])] = m[4]
		case m[5] != "":
			attrs[strings.ToLower(m[5])] = m[6]
		case m[7] != "":
			addPositional(m[7])
		case m[8] != "":
			addPositional(m[8])
		default:
			addPositional(m[9])
		}
	}
	return attrs
}

// Unautop removes the <p> wrapping Autop adds around a shortcode that stands alone.
func (s *Shortcodes) Unautop(text string) string {
	names := s.Names()
	if len(names) == 0 || !strings.Contains(text, "[") {
		return text
	}

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	alt := strings.Join(quoted, "|")

	re := regexp.MustCompile(`(?is)<p>\s*(\[(?:` + alt + `)(?:[\s/][^\]]*)?\](?:.*?\[/(?:` + alt + `)\])?)\s*(?:<br />)?\s*</p>`)
	return re.ReplaceAllString(text, "$1")
}
