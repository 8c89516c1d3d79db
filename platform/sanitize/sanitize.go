// Package sanitize strips markup from text that reaches the CRM, whether it
// was typed by a subscriber or produced by the directory model.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTag    = regexp.MustCompile(`<[^>]*>`)
	spaceRun   = regexp.MustCompile(`[ \t\f\v]+`)
	lineBreaks = regexp.MustCompile(`\s*\n\s*`)
)

var entities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

// StripHTML removes tags, decodes common entities and strips again so that
// encoded tags do not survive.
func StripHTML(s string) string {
	result := htmlTag.ReplaceAllString(s, "")
	result = entities.Replace(result)
	result = htmlTag.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text is for multi-line fields such as notes. Line breaks are kept,
// runs of spaces collapse to one.
func Text(s string) string {
	s = strings.ReplaceAll(StripHTML(s), "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(line, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Line is for single-line fields such as names, addresses and tags.
func Line(s string) string {
	s = lineBreaks.ReplaceAllString(StripHTML(s), " ")
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Lines applies Line to every element.
func Lines(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = Line(v)
	}
	return out
}
