package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const allBlocks = `(?:table|thead|tfoot|caption|col|colgroup|tbody|tr|td|th|div|dl|dd|dt|ul|ol|li|pre|` +
	`form|map|area|blockquote|address|math|style|p|h[1-6]|hr|fieldset|legend|section|article|aside|` +
	`hgroup|header|footer|nav|figure|figcaption|details|menu|summary|html|head|body|meta|title|link|center)`

var (
	protectedBlock = regexp.MustCompile(`(?is)<(pre|script|style|textarea)[\s>].*?</(?:pre|script|style|textarea)>`)
	tagWithNewline = regexp.MustCompile(`<[^>]*\n[^>]*>`)
	doubleBreak    = regexp.MustCompile(`<br\s*/?>\s*<br\s*/?>`)
	blockOpen      = regexp.MustCompile(`(?i)(<` + allBlocks + `[\s/>])`)
	blockClose     = regexp.MustCompile(`(?i)(</` + allBlocks + `>)`)
	horizontalRule = regexp.MustCompile(`(?i)<hr\s*?/?>`)
	manyNewlines   = regexp.MustCompile(`\n\n+`)
	paragraphSplit = regexp.MustCompile(`\n\s*\n`)
	declaration    = regexp.MustCompile(`(?s)^<!(?:--.*?--|[^>]*)>$`)

	emptyParagraph     = regexp.MustCompile(`<p>\s*</p>`)
	unclosedParagraph  = regexp.MustCompile(`(?i)<p>([^<]+)</(div|address|form)>`)
	wrappedBlock       = regexp.MustCompile(`(?i)<p>\s*(</?` + allBlocks + `[^>]*>)\s*</p>`)
	wrappedListItem    = regexp.MustCompile(`(?is)<p>(<li.+?)</p>`)
	blockquoteOpen     = regexp.MustCompile(`(?i)<p><blockquote([^>]*)>`)
	blockquoteClose    = regexp.MustCompile(`(?i)</blockquote></p>`)
	paragraphBefore    = regexp.MustCompile(`(?i)<p>\s*(</?` + allBlocks + `[^>]*>)`)
	paragraphAfter     = regexp.MustCompile(`(?i)(</?` + allBlocks + `[^>]*>)\s*</p>`)
	lineBreak          = regexp.MustCompile(`(?:<br\s*/?>)?[ \t]*\n`)
	breakAfterBlock    = regexp.MustCompile(`(?i)(</?` + allBlocks + `[^>]*>)\s*<br />`)
	breakBeforeBlock   = regexp.MustCompile(`(?i)<br />(\s*</?(?:p|li|div|dl|dd|dt|th|pre|td|ul|ol)[^>]*>)`)
	breakAfterDecl     = regexp.MustCompile(`(?s)(<!(?:--.*?--|[^>]*)>)\s*<br />`)
	placeholderPattern = regexp.MustCompile(`<pre autop-(\d+)></pre>`)
)

const tagNewline = "\x00autop-nl\x00"

// Autop turns blank-line separated text into <p> paragraphs.
// With br set, single newlines inside a paragraph become <br />.
// Block-level elements are not wrapped; pre, script, style and textarea
// content is left as it is.
func Autop(text string, br bool) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var protected []string
	text = protectedBlock.ReplaceAllStringFunc(text, func(m string) string {
		protected = append(protected, m)
		return fmt.Sprintf("<pre autop-%d></pre>", len(protected)-1)
	})

	text = tagWithNewline.ReplaceAllStringFunc(text, func(m string) string {
		return strings.ReplaceAll(m, "\n", tagNewline)
	})

	text += "\n"
	text = doubleBreak.ReplaceAllString(text, "\n\n")
	text = blockOpen.ReplaceAllString(text, "\n\n$1")
	text = blockClose.ReplaceAllString(text, "$1\n\n")
	text = horizontalRule.ReplaceAllString(text, "$0\n\n")
	text = manyNewlines.ReplaceAllString(text, "\n\n")

	var b strings.Builder
	for _, piece := range paragraphSplit.Split(text, -1) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if declaration.MatchString(piece) {
			b.WriteString(piece + "\n")
			continue
		}
		b.WriteString("<p>" + piece + "</p>\n")
	}
	text = b.String()

	text = emptyParagraph.ReplaceAllString(text, "")
	text = unclosedParagraph.ReplaceAllString(text, "<p>$1</p></$2>")
	text = wrappedBlock.ReplaceAllString(text, "$1")
	text = wrappedListItem.ReplaceAllString(text, "$1")
	text = blockquoteOpen.ReplaceAllString(text, "<blockquote$1><p>")
	text = blockquoteClose.ReplaceAllString(text, "</p></blockquote>")
	text = paragraphBefore.ReplaceAllString(text, "$1")
	text = paragraphAfter.ReplaceAllString(text, "$1")

	if br {
		text = lineBreak.ReplaceAllString(text, "<br />\n")
	}

	text = breakAfterBlock.ReplaceAllString(text, "$1")
	text = breakBeforeBlock.ReplaceAllString(text, "$1")
	text = breakAfterDecl.ReplaceAllString(text, "$1")
	text = strings.TrimSuffix(strings.TrimRight(text, "\n"), "<br />")

	text = strings.ReplaceAll(text, tagNewline, "\n")
	text = placeholderPattern.ReplaceAllStringFunc(text, func(m string) string {
		i, err := strconv.Atoi(placeholderPattern.FindStringSubmatch(m)[1])
		if err != nil || i >= len(protected) {
			return m
		}
		return protected[i]
	})

	return text
}
