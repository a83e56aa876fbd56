// Package sanitizer normalizes form input before validation.
//
// Transforms are plain functions composed with Apply:
//
//	email := sanitizer.Apply(raw, sanitizer.Trim, sanitizer.ToLower)
package sanitizer

import (
	"strings"
	"unicode"
)

// Apply runs transforms over value in order.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, transform := range transforms {
		value = transform(value)
	}
	return value
}

// Compose folds transforms into a single reusable transform.
func Compose[T any](transforms ...func(T) T) func(T) T {
	return func(value T) T {
		return Apply(value, transforms...)
	}
}

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// ToLower converts a string to lowercase.
func ToLower(s string) string {
	return strings.ToLower(s)
}

// CollapseSpaces replaces runs of whitespace with a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripControl drops control characters such as pasted tabs and newlines.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// NormalizeEmail trims and lowercases an address.
var NormalizeEmail = Compose(Trim, ToLower)

// NormalizeText is used for names and address lines.
var NormalizeText = Compose(StripControl, CollapseSpaces)

// ToUpper converts a string to uppercase.
func ToUpper(s string) string {
	return strings.ToUpper(s)
}
