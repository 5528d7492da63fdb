// Package normalize provides canonical forms for user-supplied strings
// before they are validated or persisted. Normalization here is about
// storage hygiene (trimming, case folding where the field is
// case-insensitive); comparison-oriented folding lives with the code
// that compares.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a person's display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role string so validation can compare
// against the canonical lowercase constants.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Status lowercases and trims a status string.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryParam trims a query parameter, preserving case.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Title trims a feedback title and collapses internal runs of
// whitespace to single spaces, preserving case. The stored title is
// the display form; similarity matching applies its own folding.
func Title(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Snippet collapses whitespace and truncates s to at most max runes,
// cutting back to a word boundary where one exists and appending "..."
// when text was dropped. Callers strip markup first; this operates on
// plain text.
func Snippet(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	cut := string(runes[:max])
	if i := strings.LastIndex(cut, " "); i > max/2 {
		cut = cut[:i]
	}
	return cut + "..."
}
