// Package isbn provides canonicalization and checksum validation for book
// identifiers. It is pure and never returns errors: invalid input yields
// false from Validate and a best-effort cleaned string from Normalize, so
// callers can keep showing a user's in-progress value without losing
// characters.
package isbn

import "strings"

// Clean canonicalizes a raw identifier string.
//
// Rules:
//  1. Uppercase, then keep only digits and the letter X.
//  2. If the result is longer than 10 characters, strip X entirely
//     (ISBN-13 is numeric-only).
//  3. If the result is 10 characters or fewer and an X appears anywhere
//     except the last position, strip all X occurrences (an X is only
//     meaningful as the ISBN-10 check digit).
//
// The result may be shorter than the input; this is intentional lossy
// normalization, not an error.
func Clean(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range strings.ToUpper(raw) {
		if (r >= '0' && r <= '9') || r == 'X' {
			b.WriteRune(r)
		}
	}
	s := b.String()

	if len(s) > 10 {
		return strings.ReplaceAll(s, "X", "")
	}
	if idx := strings.IndexByte(s, 'X'); idx >= 0 && idx != len(s)-1 {
		return strings.ReplaceAll(s, "X", "")
	}
	return s
}

// Normalize returns the canonical stored form of an identifier: the cleaned
// string, valid or not. Validity is checked separately via Validate.
func Normalize(raw string) string {
	return Clean(raw)
}

// Validate reports whether raw cleans to a checksum-valid ISBN-10 or ISBN-13.
// Empty or whitespace-only input is invalid.
func Validate(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}

	s := Clean(raw)
	switch len(s) {
	case 10:
		return validISBN10(s)
	case 13:
		return validISBN13(s)
	default:
		return false
	}
}

// validISBN10 checks the mod-11 checksum of a 10-character candidate.
// The first nine characters must be digits; the last may be a digit or X.
func validISBN10(s string) bool {
	sum := 0
	for i := range 9 {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * (10 - i)
	}

	switch last := s[9]; {
	case last == 'X':
		sum += 10
	case last >= '0' && last <= '9':
		sum += int(last - '0')
	default:
		return false
	}

	return sum%11 == 0
}

// validISBN13 checks the weighted mod-10 checksum of a 13-digit candidate.
func validISBN13(s string) bool {
	sum := 0
	for i := range 12 {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(c-'0') * weight
	}
	if s[12] < '0' || s[12] > '9' {
		return false
	}

	expected := (10 - (sum % 10)) % 10
	return expected == int(s[12]-'0')
}
