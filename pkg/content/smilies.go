package content

import (
	"regexp"
	"strings"
)

// Smilies maps text emoticons to emoji.
var Smilies = map[string]string{
	":)":  "🙂",
	":-)": "🙂",
	";)":  "😉",
	";-)": "😉",
	":(":  "🙁",
	":-(": "🙁",
	":D":  "😀",
	":-D": "😀",
	":P":  "😛",
	":-P": "😛",
	":o":  "😮",
	":-o": "😮",
	":|":  "😐",
	":-|": "😐",
	"8-)": "😎",
	":?":  "😕",
	":-?": "😕",
	":x":  "😡",
	":-x": "😡",
}

var word = regexp.MustCompile(`\S+`)

// ConvertSmilies replaces emoticons that stand alone between whitespace
// or line edges. Markup and code-like elements are skipped.
func ConvertSmilies(text string) string {
	if !strings.ContainsAny(text, ":;8") {
		return text
	}
	return mapText(text, func(s string) string {
		return word.ReplaceAllStringFunc(s, func(w string) string {
			if e, ok := Smilies[w]; ok {
				return e
			}
			return w
		})
	})
}
