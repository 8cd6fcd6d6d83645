package session

import (
	"context"
	"errors"
)

// FetchResult is one user's watchlist fetch outcome, either an ordered
// title list or an error.
type FetchResult struct {
	Titles []Title
	Err    error
}

// Merge combines per-user watchlist results into one deduplicated
// collection. Usernames give the submission order, which fixes the output
// order: titles appear in first-seen order across the concatenation of
// per-user lists. The first occurrence of a title ID fixes its display
// fields; later occurrences only append the new owner. Users whose fetch
// failed contribute no titles and surface one UserError each; a cancelled
// fetch is not reported.
func Merge(usernames []string, results map[string]FetchResult) ([]OwnedTitle, []UserError) {
	var merged []OwnedTitle
	index := make(map[string]int)
	var userErrs []UserError

	for _, username := range usernames {
		res, ok := results[username]
		if !ok {
			continue
		}
		if res.Err != nil {
			if errors.Is(res.Err, context.Canceled) {
				continue
			}
			userErrs = append(userErrs, UserError{
				Username: username,
				Message:  res.Err.Error(),
			})
			continue
		}

		for _, title := range res.Titles {
			if i, seen := index[title.ID]; seen {
				if !merged[i].OwnedBy(username) {
					merged[i].Owners = append(merged[i].Owners, username)
				}
				continue
			}
			index[title.ID] = len(merged)
			merged = append(merged, OwnedTitle{
				Title:  title,
				Owners: []string{username},
			})
		}
	}

	return merged, userErrs
}
