// Package textnorm canonicalizes free text before it is compared or used as a
// lookup key. Every function is pure and safe for concurrent use.
package textnorm

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	numberRe = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// Normalize lower-cases s, folds accents, collapses every run of characters
// that are neither letters nor digits into one space, and trims the result.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	folded := foldAccents(strings.ToLower(s))
	return strings.TrimSpace(nonAlnum.ReplaceAllString(folded, " "))
}

// foldAccents strips non-spacing marks after canonical decomposition, so
// "é" becomes "e" and "ç" becomes "c".
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Tokens splits the normalized form of s on whitespace.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// TokenSet returns the distinct tokens of s.
func TokenSet(s string) map[string]struct{} {
	tokens := Tokens(s)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// Numbers returns every integer or decimal substring of the raw text, in
// order of appearance. "1,5" and "1.5" are kept verbatim.
func Numbers(raw string) []string {
	return numberRe.FindAllString(raw, -1)
}
