package match

import (
	"quarto/internal/catalog"
	"quarto/internal/textutil"
)

// CertainMatch is returned by SameEntry when any identifier field matches.
// Callers comparing against thresholds can treat it as proof of identity.
const CertainMatch = 100.0

// identifierBonus is the per-field score for an exact identifier match.
const identifierBonus = 100.0

// Score compares one field across two records and returns a non-negative
// confidence contribution. Identifier fields yield identifierBonus on exact
// match after folding, zero otherwise. Other fields yield the fraction of
// shared tokens across the two values. Empty values are no evidence and
// score zero.
func Score(a, b *catalog.Record, field string) float64 {
	if a == nil || b == nil {
		return 0
	}
	valueA := a.Field(field)
	valueB := b.Field(field)
	if valueA == "" || valueB == "" {
		return 0
	}
	if a.Schema().IsIdentifier(field) {
		return scoreIdentifier(a.Values(field), b.Values(field))
	}
	return tokenOverlap(valueA, valueB)
}

// SameEntry returns the aggregate match confidence for two records under the
// first record's schema. Any positive identifier-field score short-circuits
// to CertainMatch; otherwise the result is the weighted sum over the schema's
// match-weight table. Records of different collection types never match.
func SameEntry(a, b *catalog.Record) float64 {
	if a == nil || b == nil {
		return 0
	}
	schema := a.Schema()
	if b.Type() != schema.Type() {
		return 0
	}
	for _, field := range schema.IdentifierFields() {
		if Score(a, b, field) > 0 {
			return CertainMatch
		}
	}
	var total float64
	for _, fw := range schema.MatchWeights() {
		total += fw.Weight * Score(a, b, fw.Field)
	}
	return total
}

func scoreIdentifier(valuesA, valuesB []string) float64 {
	for _, rawA := range valuesA {
		foldedA := textutil.FoldIdentifier(rawA)
		if foldedA == "" {
			continue
		}
		for _, rawB := range valuesB {
			if foldedA == textutil.FoldIdentifier(rawB) {
				return identifierBonus
			}
		}
	}
	return 0
}

// tokenOverlap computes the shared-token fraction of two field values:
// the multiset intersection size divided by the larger token count. The
// result is symmetric and lies in [0, 1]. Values that are identical after
// normalization are full overlap even when tokenization would discard them
// (one-character titles such as "M" or "9").
func tokenOverlap(valueA, valueB string) float64 {
	normA := textutil.Normalize(valueA)
	normB := textutil.Normalize(valueB)
	if normA != "" && normA == normB {
		return 1
	}
	tokensA := textutil.Tokenize(valueA)
	tokensB := textutil.Tokenize(valueB)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	counts := make(map[string]int, len(tokensA))
	for _, token := range tokensA {
		counts[token]++
	}
	shared := 0
	for _, token := range tokensB {
		if counts[token] > 0 {
			counts[token]--
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	larger := len(tokensA)
	if len(tokensB) > larger {
		larger = len(tokensB)
	}
	return float64(shared) / float64(larger)
}
