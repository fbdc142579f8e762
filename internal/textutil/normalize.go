package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// diacriticFolder strips combining marks after canonical decomposition.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text, strips diacritics, and collapses interior
// whitespace. Returns "" for whitespace-only input.
func Normalize(text string) string {
	folded, _, err := transform.String(diacriticFolder, text)
	if err != nil {
		folded = text
	}
	lowered := strings.ToLower(strings.TrimSpace(folded))
	return strings.Join(strings.Fields(lowered), " ")
}

// Tokenize splits text into normalized lowercase tokens, filtering short tokens.
func Tokenize(text string) []string {
	normalized := Normalize(text)
	raw := tokenSplitPattern.Split(normalized, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 2 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// FoldIdentifier reduces an identifier value to its comparable core: lowercase
// with all whitespace and punctuation removed. "978-0-00 000" and "9780-0000 0"
// fold to different values; "978-0-1" and "97801" fold to the same value.
func FoldIdentifier(value string) string {
	normalized := Normalize(value)
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
