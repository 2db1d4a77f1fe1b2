// Package sanitize cleans user text before any engine packages it.
//
// The paginated and structured outputs embed the Go font family, which covers
// the Basic Multilingual Plane scripts used in practice (Latin, Cyrillic,
// Greek, box drawing). Text runs pass through Text so both outputs show the
// same characters for the same source.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// TabWidth is the number of spaces a tab expands to.
const TabWidth = 4

// maxSafeRune is the last code point the embedded fonts may cover.
const maxSafeRune = 0xFFFF

// Text normalizes s to NFC, replaces runes outside the BMP with a space,
// drops control characters other than newline, and expands tabs.
func Text(s string) string {
	if s == "" {
		return s
	}
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\t':
			b.WriteString(strings.Repeat(" ", TabWidth))
		case r == '\r':
			// dropped: line endings are normalized upstream
		case r > maxSafeRune:
			b.WriteByte(' ')
		case r == unicode.ReplacementChar:
			b.WriteByte(' ')
		case unicode.IsControl(r):
		case r >= 0xE000 && r <= 0xF8FF:
			// private use area
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lines sanitizes s and splits it on newlines. Trailing newlines do not
// produce empty trailing lines.
func Lines(s string) []string {
	s = strings.TrimRight(Text(s), "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}
