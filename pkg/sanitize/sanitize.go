// Package sanitize provides the string pre-processing helpers applied to
// every identity field before storage and to every search query before
// matching. Both sides must go through the same normalization, otherwise
// edit distances between stored fields and queries become meaningless.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes runes and drops the combining marks, so "Müller"
// normalizes to "Muller".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Sanitize trims the string, collapses internal whitespace runs to single
// spaces, strips diacritics and lowercases. Pure and idempotent; returns ""
// for whitespace-only input.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	s = strings.Join(strings.Fields(s), " ")

	if folded, _, err := transform.String(stripMarks, s); err == nil {
		s = folded
	}

	return strings.ToLower(s)
}

// Capitalize uppercases the first rune of every space-separated word.
// Applied to stored names after Sanitize, matching how the directory
// displays them.
func Capitalize(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
