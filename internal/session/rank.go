package session

import "sort"

// Score counts the availability options for one title that match the
// filter selection: the option's service must be selected (an empty
// selection selects all services), and when SubscriptionOnly is set only
// subscription options count. Titles whose availability has not resolved
// yet score zero.
func Score(state TitleState, filters FilterSelection) int {
	if state.Status != StatusSuccess {
		return 0
	}

	score := 0
	for serviceID, options := range state.Options {
		if !filters.HasService(serviceID) {
			continue
		}
		for _, o := range options {
			if filters.SubscriptionOnly && o.Kind != KindSubscription {
				continue
			}
			score++
		}
	}
	return score
}

// Rank sorts the collection descending by score. The sort is stable, so
// ties keep the collection's pre-existing first-seen order. The input
// slice is not modified.
func Rank(collection []OwnedTitle, states map[string]TitleState, filters FilterSelection) []OwnedTitle {
	ranked, _ := rankScored(collection, states, filters)
	return ranked
}

// rankScored is Rank plus the per-title scores it sorted by, so callers
// building a view do not score twice.
func rankScored(collection []OwnedTitle, states map[string]TitleState, filters FilterSelection) ([]OwnedTitle, map[string]int) {
	ranked := make([]OwnedTitle, len(collection))
	copy(ranked, collection)

	scores := make(map[string]int, len(ranked))
	for _, t := range ranked {
		scores[t.ID] = Score(states[t.ID], filters)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].ID] > scores[ranked[j].ID]
	})

	return ranked, scores
}

// ApplyIntersection filters the collection down to titles present in every
// queried user's watchlist when the intersect flag is set. With the flag
// unset the collection passes through unchanged.
func ApplyIntersection(collection []OwnedTitle, totalUsers int, filters FilterSelection) []OwnedTitle {
	if !filters.Intersect {
		return collection
	}

	filtered := make([]OwnedTitle, 0, len(collection))
	for _, t := range collection {
		if len(t.Owners) == totalUsers {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
