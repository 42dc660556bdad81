// Package autop rebuilds paragraph and line-break markup from plain text
// separated by blank lines, reproducing the WordPress 3.x wpautop output
// exactly so existing content renders the way it did on the source site.
package autop

import (
	"fmt"
	"regexp"
	"strings"
)

const allBlocks = `(?:table|thead|tfoot|caption|col|colgroup|tbody|tr|td|th|div|dl|dd|dt|ul|ol|li|pre|select|option|form|map|area|blockquote|address|math|style|p|h[1-6]|hr|fieldset|noscript|legend|section|article|aside|hgroup|header|footer|nav|figure|figcaption|details|menu|summary)`

const preserveNewline = "<WPPreserveNewline />"

var (
	reBrTag         = regexp.MustCompile(`(?i)<br\s*/?>`)
	reDoubleBr      = regexp.MustCompile(`<br />\s*<br />`)
	reBlockOpen     = regexp.MustCompile(`(<` + allBlocks + `[^>]*>)`)
	reBlockClose    = regexp.MustCompile(`(</` + allBlocks + `>)`)
	reParam         = regexp.MustCompile(`\s*<param([^>]*)>\s*`)
	reEmbedClose    = regexp.MustCompile(`\s*</embed>\s*`)
	reNewlineRuns   = regexp.MustCompile(`\n\n+`)
	reParagraphGap  = regexp.MustCompile(`\n\s*\n`)
	reEmptyP        = regexp.MustCompile(`<p>\s*</p>`)
	reUnclosedP     = regexp.MustCompile(`<p>([^<]+)</(div|address|form)>`)
	reOnlyBlockInP  = regexp.MustCompile(`<p>\s*(</?` + allBlocks + `[^>]*>)\s*</p>`)
	reListItemInP   = regexp.MustCompile(`<p>(<li.+?)</p>`)
	reBlockquoteP   = regexp.MustCompile(`(?i)<p><blockquote([^>]*)>`)
	rePBeforeBlock  = regexp.MustCompile(`<p>\s*(</?` + allBlocks + `[^>]*>)`)
	rePAfterBlock   = regexp.MustCompile(`(</?` + allBlocks + `[^>]*>)\s*</p>`)
	reScript        = regexp.MustCompile(`(?s)<script.*?</script>`)
	reStyle         = regexp.MustCompile(`(?s)<style.*?</style>`)
	reBrAfterBlock  = regexp.MustCompile(`(</?` + allBlocks + `[^>]*>)\s*<br />`)
	reBrBeforeBlock = regexp.MustCompile(`<br />(\s*</?(?:p|li|div|dl|dd|dt|th|pre|td|ul|ol)[^>]*>)`)
	reTrailingP     = regexp.MustCompile(`\n</p>(\n?)$`)
)

// Autop converts double line breaks to paragraphs and single ones to <br />.
type Autop struct {
	// Breaks enables the conversion of remaining single newlines to <br />.
	Breaks bool
}

// New creates an Autop that converts line breaks.
func New() *Autop {
	return &Autop{Breaks: true}
}

// Rewrite applies the paragraph reconstruction.
func (a *Autop) Rewrite(text string) (string, error) {
	return Apply(text, a.Breaks), nil
}

// Apply runs the auto-paragraph algorithm on text.
func Apply(text string, breaks bool) string {
	if strings.Trim(text, " \t\n\r\x00\x0B") == "" {
		return ""
	}
	text += "\n"

	text, preTags := extractPre(text)

	// Breaks may arrive as <br>, <br/> or <br />; the patterns below match
	// only the last form.
	text = reBrTag.ReplaceAllString(text, "<br />")

	text = reDoubleBr.ReplaceAllString(text, "\n\n")

	text = reBlockOpen.ReplaceAllString(text, "\n$1")
	text = reBlockClose.ReplaceAllString(text, "$1\n\n")
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n").Replace(text)

	if strings.Contains(text, "<object") {
		text = reParam.ReplaceAllString(text, "<param$1>")
		text = reEmbedClose.ReplaceAllString(text, "</embed>")
	}

	text = reNewlineRuns.ReplaceAllString(text, "\n\n")

	var b strings.Builder
	for _, part := range reParagraphGap.Split(text, -1) {
		if part == "" {
			continue
		}
		b.WriteString("<p>" + strings.Trim(part, "\n") + "</p>\n")
	}
	text = b.String()

	text = reEmptyP.ReplaceAllString(text, "")
	text = reUnclosedP.ReplaceAllString(text, "<p>$1</p></$2>")
	text = reOnlyBlockInP.ReplaceAllString(text, "$1")
	text = reListItemInP.ReplaceAllString(text, "$1")
	text = reBlockquoteP.ReplaceAllString(text, "<blockquote$1><p>")
	text = strings.ReplaceAll(text, "</blockquote></p>", "</p></blockquote>")
	text = rePBeforeBlock.ReplaceAllString(text, "$1")
	text = rePAfterBlock.ReplaceAllString(text, "$1")

	if breaks {
		text = reScript.ReplaceAllStringFunc(text, preserveNewlines)
		text = reStyle.ReplaceAllStringFunc(text, preserveNewlines)
		text = newlinesToBreaks(text)
		text = strings.ReplaceAll(text, preserveNewline, "\n")
	}

	text = reBrAfterBlock.ReplaceAllString(text, "$1")
	text = reBrBeforeBlock.ReplaceAllString(text, "$1")
	text = reTrailingP.ReplaceAllString(text, "</p>$1")

	for _, pre := range preTags {
		text = strings.ReplaceAll(text, pre.placeholder, pre.html)
	}
	return text
}

type preTag struct {
	placeholder string
	html        string
}

// extractPre swaps every <pre> element for a placeholder so its content is
// not paragraph-split.
func extractPre(text string) (string, []preTag) {
	if !strings.Contains(text, "<pre") {
		return text, nil
	}

	parts := strings.Split(text, "</pre>")
	last := parts[len(parts)-1]
	parts = parts[:len(parts)-1]

	var (
		b    strings.Builder
		tags []preTag
	)
	for _, part := range parts {
		start := strings.Index(part, "<pre")
		if start == -1 {
			b.WriteString(part)
			continue
		}
		name := fmt.Sprintf("<pre wp-pre-tag-%d></pre>", len(tags))
		tags = append(tags, preTag{placeholder: name, html: part[start:] + "</pre>"})
		b.WriteString(part[:start] + name)
	}
	b.WriteString(last)
	return b.String(), tags
}

func preserveNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", preserveNewline)
}

// newlinesToBreaks replaces each run of whitespace ending in a newline with
// "<br />\n" unless the run directly follows a "<br />" in the input.
func newlinesToBreaks(s string) string {
	const br = "<br />"
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		if !strings.HasSuffix(s[:i], br) {
			end := i
			lastNewline := -1
			for end < len(s) && isSpace(s[end]) {
				if s[end] == '\n' {
					lastNewline = end
				}
				end++
			}
			if lastNewline >= 0 {
				b.WriteString(br + "\n")
				i = lastNewline + 1
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
