// Package snippet normalizes raw excerpts into plain-text snippets for
// narrative result types.
package snippet

import (
	"regexp"
	"strings"
)

// DefaultMaxChars is the character budget applied to narrative snippets.
const DefaultMaxChars = 400

var (
	markdownHeaders = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	markdownLink    = regexp.MustCompile(`\[([^\]]+)]\([^)]+\)`)
	htmlTags        = regexp.MustCompile(`<[^>]*>`)
	multiSpace      = regexp.MustCompile(`\s+`)
)

var htmlUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
	"&nbsp;", " ",
)

// Clean strips markdown and HTML noise from text, collapses whitespace and
// truncates to maxChars, appending an ellipsis marker when truncated.
// maxChars <= 0 disables truncation.
func Clean(text string, maxChars int) string {
	cleaned := markdownHeaders.ReplaceAllString(text, "")
	cleaned = markdownLink.ReplaceAllString(cleaned, "$1")
	cleaned = htmlTags.ReplaceAllString(cleaned, " ")
	cleaned = strings.ReplaceAll(cleaned, "`", "")
	cleaned = htmlUnescaper.Replace(cleaned)
	cleaned = strings.TrimSpace(multiSpace.ReplaceAllString(cleaned, " "))
	if maxChars > 0 {
		// Budget counts characters, not bytes; excerpts carry Arabic text.
		if runes := []rune(cleaned); len(runes) > maxChars {
			return strings.TrimSpace(string(runes[:maxChars])) + "..."
		}
	}
	return cleaned
}
