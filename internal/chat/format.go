package chat

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	codePattern   = regexp.MustCompile("`(.*?)`")
)

// FormatMessage renders the light markup assistants use: **bold**,
// *italic*, `code` and line breaks. The text is escaped first so only
// those tags can reach the page.
func FormatMessage(text string) template.HTML {
	out := html.EscapeString(text)
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicPattern.ReplaceAllString(out, "<em>$1</em>")
	out = codePattern.ReplaceAllString(out, "<code>$1</code>")
	out = strings.ReplaceAll(out, "\n", "<br>")
	return template.HTML(out) //nolint:gosec // input is escaped above
}
