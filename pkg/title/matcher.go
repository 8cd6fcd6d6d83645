package title

import "github.com/hbollon/go-edlib"

// MatchResult is the outcome of matching a watchlist title against
// availability search result candidates.
type MatchResult struct {
	Index int     // index into the candidate list, -1 when nothing matched
	Score float64 // Jaro-Winkler similarity (0.0-1.0)
}

// MinMatchScore is the similarity floor below which a candidate is not
// considered the same work.
const MinMatchScore = 0.85

// Match finds the candidate most similar to the wanted title. Jaro-Winkler
// favors shared prefixes, which suits movie titles where sequels differ
// only in their suffix. Returns Index -1 when no candidate clears
// MinMatchScore.
func Match(wanted string, candidates []string) MatchResult {
	best := MatchResult{Index: -1}
	normalizedWanted := Clean(wanted)

	for i, candidate := range candidates {
		score := float64(edlib.JaroWinklerSimilarity(normalizedWanted, Clean(candidate)))
		if score > best.Score {
			best.Index = i
			best.Score = score
		}
	}

	if best.Score < MinMatchScore {
		return MatchResult{Index: -1, Score: best.Score}
	}
	return best
}
