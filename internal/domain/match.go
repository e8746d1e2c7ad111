package domain

import "strings"

const similarityThreshold = 0.75

// MatchName resolves a human-entered name against the portal's candidate
// labels. Exact and substring matches win before edit-distance similarity is
// tried; matching is case-insensitive throughout.
func MatchName(target string, candidates []string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(target))
	if want == "" {
		return 0, false
	}

	for i, candidate := range candidates {
		if strings.ToLower(strings.TrimSpace(candidate)) == want {
			return i, true
		}
	}

	for i, candidate := range candidates {
		if strings.Contains(strings.ToLower(candidate), want) {
			return i, true
		}
	}

	best := -1
	bestScore := 0.0
	for i, candidate := range candidates {
		score := similarity(want, strings.ToLower(strings.TrimSpace(candidate)))
		if score >= similarityThreshold && score > bestScore {
			best = i
			bestScore = score
		}
	}
	if best >= 0 {
		return best, true
	}

	return 0, false
}

func similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	if longest == 0 {
		return 1
	}

	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}

			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
