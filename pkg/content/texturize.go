package content

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// token splits markup from text: comments, tags, [shortcodes] and {{vars}}.
var token = regexp.MustCompile(`(?s)<!--.*?-->|<[^>]*>|\[[^\[\]]*\]|\{\{.*?\}\}`)

var tagName = regexp.MustCompile(`^<\s*(/?)\s*([A-Za-z][A-Za-z0-9]*)`)

// noTexturize are elements whose text is left untouched.
var noTexturize = map[string]struct{}{
	"pre": {}, "code": {}, "kbd": {}, "samp": {}, "tt": {},
	"style": {}, "script": {}, "textarea": {},
}

var staticReplacements = strings.NewReplacer(
	"---", "—",
	" -- ", " — ",
	"--", "–",
	" - ", " – ",
	"...", "…",
	"``", "“",
	"''", "”",
	"(tm)", "™",
	"(c)", "©",
	"(r)", "®",
)

// Texturize replaces straight quotes with curly ones and ASCII dashes,
// ellipses and symbols with their typographic forms.
// Markup, shortcodes, {{vars}} and the content of code-like elements are skipped.
func Texturize(text string) string {
	prev := ' '
	return walkText(text, func(s, prevTok string, raw bool) string {
		if strings.HasPrefix(prevTok, "{{") || strings.HasPrefix(prevTok, "[") {
			prev = rune(prevTok[len(prevTok)-1])
		}
		out := s
		if !raw {
			out = texturizeText(s, prev)
		}
		if r, _ := utf8.DecodeLastRuneInString(out); r != utf8.RuneError {
			prev = r
		}
		return out
	})
}

// texturizeText converts one text run. prev is the rune before it.
func texturizeText(s string, prev rune) string {
	s = staticReplacements.Replace(s)
	runes := []rune(s)
	for i, r := range runes {
		next := ' '
		if i+1 < len(runes) {
			next = runes[i+1]
		}

		switch r {
		case '"':
			switch {
			case unicode.IsDigit(prev):
				runes[i] = '″'
			case opensQuote(prev):
				runes[i] = '“'
			default:
				runes[i] = '”'
			}
		case '\'':
			switch {
			case unicode.IsLetter(prev) && unicode.IsLetter(next):
				runes[i] = '’'
			case unicode.IsDigit(prev):
				runes[i] = '′'
			case opensQuote(prev) && unicode.IsDigit(next):
				runes[i] = '’'
			case opensQuote(prev):
				runes[i] = '‘'
			default:
				runes[i] = '’'
			}
		}
		prev = runes[i]
	}
	return string(runes)
}

func opensQuote(prev rune) bool {
	return unicode.IsSpace(prev) || strings.ContainsRune("([{—–“‘-", prev)
}
