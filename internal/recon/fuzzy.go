package recon

import "math"

// Fuzzy-name scoring for the third match tier. The production reference
// lists top out at a few thousand rows, so a linear scan with an O(a*b)
// edit distance per candidate is fast enough; the per-metal candidate
// cache in Index keeps repeat queries cheap.

const (
	nameWeight = 0.8
	idWeight   = 0.2
)

// levenshtein computes the edit distance between two strings using two
// rolling rows instead of the full matrix.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Keep a as the shorter string so the rows stay small.
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(b); j++ {
		curr[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(a)]
}

// similarity returns 1 - distance/maxlen in [0,1]; 1 means identical.
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	maxLen := max(len(a), len(b))
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

// weightedScore ranks a reference record against a normalized name query.
// Per-field distances combine geometrically, weighted 0.8 on the
// normalized facility name and 0.2 on the facility id, so a field that
// does not match at all (distance 1) leaves the other field's score
// untouched instead of capping it. The result is in [0,1] and doubles as
// the match confidence (1 = perfect).
func weightedScore(query, normName, facilityID string) float64 {
	nameDist := 1 - similarity(query, normName)
	idDist := 1.0
	if facilityID != "" {
		idDist = 1 - similarity(query, facilityID)
	}
	return 1 - math.Pow(nameDist, nameWeight)*math.Pow(idDist, idWeight)
}
