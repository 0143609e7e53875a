// Package matching resolves free-text invoice lines to catalog products.
//
// A line is first looked up in the supplier mapping memo. On a miss every
// catalog entry is scored deterministically, the best five are handed to an
// optional semantic oracle, and the orchestrator settles on one of four
// outcomes: MAPPED, ORACLE_CONFIRMED, HEURISTIC_FALLBACK or UNRESOLVED.
package matching

import (
	"math"
	"unicode/utf8"

	"github.com/JonMunkholm/stockmatch/internal/textnorm"
	"github.com/agnivade/levenshtein"
)

const (
	editWeight   = 0.6
	tokenWeight  = 0.4
	numericBonus = 0.1
)

// Score rates how well candidate describes query on a 0-100 scale.
//
// The score blends normalized edit similarity (60%) with token-set Jaccard
// overlap (40%) and adds 0.1 when both raw strings share a number verbatim.
// The sum is clamped to [0, 1] before scaling, so the bonus can saturate
// but never push past 100.
func Score(query, candidate string) int {
	q := textnorm.Normalize(query)
	c := textnorm.Normalize(candidate)
	if q == "" || c == "" {
		return 0
	}

	raw := editWeight*editSimilarity(q, c) + tokenWeight*tokenSimilarity(q, c)
	if sharesNumber(query, candidate) {
		raw += numericBonus
	}
	return int(math.Round(100 * clamp01(raw)))
}

// editSimilarity is 1 - levenshtein/maxLen over runes.
func editSimilarity(a, b string) float64 {
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b), 1)
	dist := levenshtein.ComputeDistance(a, b)
	return clamp01(1 - float64(dist)/float64(longest))
}

// tokenSimilarity is the Jaccard index of the two token sets.
func tokenSimilarity(a, b string) float64 {
	ta, tb := textnorm.TokenSet(a), textnorm.TokenSet(b)

	inter := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			inter++
		}
	}
	union := max(len(ta)+len(tb)-inter, 1)
	return float64(inter) / float64(union)
}

func sharesNumber(rawQuery, rawCandidate string) bool {
	qNums := textnorm.Numbers(rawQuery)
	if len(qNums) == 0 {
		return false
	}
	cNums := make(map[string]struct{})
	for _, n := range textnorm.Numbers(rawCandidate) {
		cNums[n] = struct{}{}
	}
	for _, n := range qNums {
		if _, ok := cNums[n]; ok {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
