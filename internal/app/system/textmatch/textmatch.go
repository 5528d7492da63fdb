// internal/app/system/textmatch/textmatch.go

// Package textmatch scores how alike two feedback titles are, for surfacing
// near-duplicate submissions.
//
// Similarity is the Sørensen–Dice coefficient over character bigrams of the
// normalized titles. Scoring is deterministic and pure; the corpus scan and
// result ordering live in the feedback store.
package textmatch

import "strings"

// DuplicateThreshold is the minimum similarity for a title to be reported
// as a duplicate candidate.
const DuplicateThreshold = 0.86

// Normalize lowercases s and collapses runs of whitespace to single spaces.
// Both sides of a comparison must be normalized with this before scoring.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// bigrams returns the multiset of overlapping length-2 shingles of s,
// keyed by shingle with occurrence counts. A string of n runes has n-1
// bigrams; strings shorter than 2 runes have none.
func bigrams(s string) map[string]int {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	m := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		m[string(runes[i:i+2])]++
	}
	return m
}

// Similarity returns the Dice coefficient between the normalized forms of a
// and b: 2*|shared bigrams| / (|bigrams(a)| + |bigrams(b)|), with shared
// counts respecting multiplicity. Identical non-degenerate strings score 1;
// strings with no bigrams (empty or single-character titles) score 0
// against everything.
func Similarity(a, b string) float64 {
	na := []rune(Normalize(a))
	nb := []rune(Normalize(b))
	if len(na) < 2 || len(nb) < 2 {
		return 0
	}

	ba := bigrams(string(na))
	shared := 0
	// Walk b's bigrams against a's counts so multiplicity is respected.
	runes := nb
	for i := 0; i < len(runes)-1; i++ {
		bg := string(runes[i : i+2])
		if ba[bg] > 0 {
			ba[bg]--
			shared++
		}
	}

	total := (len(na) - 1) + (len(nb) - 1)
	return 2 * float64(shared) / float64(total)
}
