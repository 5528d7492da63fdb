// Package htmlsanitize cleans user-supplied feedback bodies. Bodies may
// arrive as plain text or limited rich HTML; everything is sanitized on
// write and prepared for display on read, so stored content is always
// safe to embed.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy allows the user-generated-content subset plus tables with the
// class/style attributes the feedback composer emits.
var policy = newPolicy()

// textPolicy strips every element, leaving only text content.
var textPolicy = bluemonday.StrictPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
	p.AllowStyles("width", "height", "text-align", "vertical-align").OnElements("table", "thead", "tbody", "tfoot", "tr", "th", "td")
	return p
}

// Sanitize strips disallowed elements and attributes from HTML.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeToHTML sanitizes and marks the result as safe template HTML.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s looks like plain text rather than HTML.
// A string is only considered HTML when it contains both '<' and '>'.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes plain text and wraps it in a paragraph,
// converting newlines to <br>.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay converts stored body content into display-ready
// HTML: plain text is escaped and paragraph-wrapped, HTML is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}

// ToText strips all markup from s, returning plain text with entities
// decoded. Used for body excerpts in duplicate-scan results.
func ToText(s string) string {
	if s == "" {
		return ""
	}
	return html.UnescapeString(textPolicy.Sanitize(s))
}
