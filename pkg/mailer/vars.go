package mailer

import (
	"maps"
	"regexp"
	"slices"
	"strings"
)

// Vars maps shortcode keys to replacement values.
// The key EMAIL_ADDRESS is written as {{EMAIL_ADDRESS}} in subjects and bodies.
type Vars map[string]string

// Shortcode returns the placeholder for a variable key.
func Shortcode(key string) string {
	return "{{" + key + "}}"
}

// ReplaceVars substitutes every {{KEY}} in text with its value.
// Unknown placeholders are left untouched. Substitution is a single pass,
// so a value that itself contains a placeholder is not expanded again.
func ReplaceVars(text string, vars Vars) string {
	if len(vars) == 0 || !strings.Contains(text, "{{") {
		return text
	}

	keys := slices.Sorted(maps.Keys(vars))
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, Shortcode(k), vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// shortcodeAction matches a {{KEY}} placeholder: no whitespace inside and no
// leading character that opens a template action.
var shortcodeAction = regexp.MustCompile("\\{\\{([^{}\\s.$\"'`(/-][^{}\\s`]*)\\}\\}")

// templateKeywords are bare actions with a meaning of their own.
var templateKeywords = map[string]struct{}{
	"end": {}, "else": {}, "break": {}, "continue": {},
	"nil": {}, "true": {}, "false": {},
}

// boundKeywords lists the template keywords vars binds as placeholder keys, sorted.
func boundKeywords(vars Vars) []string {
	var keys []string
	for k := range vars {
		if _, ok := templateKeywords[k]; ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

// protectShortcodes rewrites {{KEY}} placeholders into template actions that
// print them verbatim, so they survive template execution and are
// substituted per recipient later. Keywords stay actions unless listed in bound.
func protectShortcodes(body string, bound ...string) string {
	return shortcodeAction.ReplaceAllStringFunc(body, func(m string) string {
		key := m[2 : len(m)-2]
		if _, ok := templateKeywords[key]; ok && !slices.Contains(bound, key) {
			return m
		}
		return "{{`" + m + "`}}"
	})
}
