// Package sanitizer normalizes user input before validation and storage.
package sanitizer

import (
	"strings"
	"unicode"
)

// Apply runs transforms over value left to right.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, fn := range transforms {
		value = fn(value)
	}
	return value
}

// Compose returns a transform equivalent to applying transforms in order.
func Compose[T any](transforms ...func(T) T) func(T) T {
	return func(v T) T { return Apply(v, transforms...) }
}

// NormalizeEmail trims and lowercases an address. Emails are compared in this
// form everywhere they are stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeWhitespace collapses runs of whitespace, including newlines, into a
// single space and trims the ends.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripControl removes control characters except newline and tab.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, s)
}
