package content

import "strings"

// walkText calls fn for each run of text between markup tokens and writes
// what it returns. Tags, shortcodes and {{vars}} are copied as they are.
// prevTok is the token right before the run; raw is true inside code-like elements.
func walkText(text string, fn func(s, prevTok string, raw bool) string) string {
	if text == "" {
		return text
	}

	var (
		b       strings.Builder
		open    = make(map[string]int)
		skipped int
	)
	b.Grow(len(text))

	pos, prevTok := 0, ""
	for _, loc := range token.FindAllStringIndex(text, -1) {
		if loc[0] > pos {
			b.WriteString(fn(text[pos:loc[0]], prevTok, skipped > 0))
		}

		tok := text[loc[0]:loc[1]]
		b.WriteString(tok)
		if m := tagName.FindStringSubmatch(tok); m != nil {
			name := strings.ToLower(m[2])
			if _, ok := noTexturize[name]; ok && !strings.HasSuffix(tok, "/>") {
				switch {
				case m[1] != "/":
					open[name]++
					skipped++
				case open[name] > 0:
					open[name]--
					skipped--
				}
			}
		}
		pos, prevTok = loc[1], tok
	}
	if pos < len(text) {
		b.WriteString(fn(text[pos:], prevTok, skipped > 0))
	}

	return b.String()
}

// mapText applies fn to text outside markup and code-like elements.
func mapText(text string, fn func(string) string) string {
	return walkText(text, func(s, _ string, raw bool) string {
		if raw {
			return s
		}
		return fn(s)
	})
}
