package search

import "strings"

// matchDistance is how many characters from the start of a field a match may
// drift before its offset alone counts as a full mismatch.
const matchDistance = 100

// Dissimilarity scores how well pattern approximately occurs inside text,
// case-insensitively, on a 0 (exact) to 1 (unrelated) scale.
//
// The score for a candidate occurrence is edits/len(pattern) plus
// start/matchDistance, where edits is the Levenshtein distance between the
// pattern and the substring of text ending at that position. The best
// candidate wins.
func Dissimilarity(pattern, text string) float64 {
	p := []rune(strings.ToLower(pattern))
	t := []rune(strings.ToLower(text))
	if len(p) == 0 {
		return 0
	}
	if len(t) == 0 {
		return 1
	}

	// prev[i] / cur[i]: edits to align p[:i] ending at the current text column.
	// start tracks where that alignment began in text.
	prev := make([]int, len(p)+1)
	cur := make([]int, len(p)+1)
	prevStart := make([]int, len(p)+1)
	curStart := make([]int, len(p)+1)
	for i := range prev {
		prev[i] = i
	}

	best := 1.0
	for j := 1; j <= len(t); j++ {
		cur[0] = 0
		curStart[0] = j
		for i := 1; i <= len(p); i++ {
			cost := 1
			if p[i-1] == t[j-1] {
				cost = 0
			}
			// substitution / match
			cur[i] = prev[i-1] + cost
			curStart[i] = prevStart[i-1]
			// text char skipped
			if v := prev[i] + 1; v < cur[i] {
				cur[i] = v
				curStart[i] = prevStart[i]
			}
			// pattern char skipped
			if v := cur[i-1] + 1; v < cur[i] {
				cur[i] = v
				curStart[i] = curStart[i-1]
			}
		}
		score := float64(cur[len(p)])/float64(len(p)) + float64(curStart[len(p)])/matchDistance
		if score < best {
			best = score
		}
		prev, cur = cur, prev
		prevStart, curStart = curStart, prevStart
	}

	return best
}
