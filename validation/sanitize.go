package validation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Sanitize normalizes free text before it is stored: NFC normalization, surrounding
// whitespace trimmed, control characters other than newline and tab removed. Markup is
// escaped when rendered, not here.
func Sanitize(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeOptional sanitizes and turns empty input into nil.
func SanitizeOptional(s string) *string {
	s = Sanitize(s)
	if s == "" {
		return nil
	}
	return &s
}
