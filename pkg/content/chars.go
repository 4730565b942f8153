package content

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

var ampersand = regexp.MustCompile(`&(#[0-9]+;|#[xX][0-9a-fA-F]+;|[A-Za-z][A-Za-z0-9]*;)?`)

// ConvertChars normalises text to NFC and encodes ampersands
// that do not start a character reference.
func ConvertChars(text string) string {
	text = norm.NFC.String(text)
	return mapText(text, func(s string) string {
		return ampersand.ReplaceAllStringFunc(s, func(m string) string {
			if m == "&" {
				return "&#038;"
			}
			return m
		})
	})
}
