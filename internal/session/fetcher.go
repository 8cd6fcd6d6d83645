package session

import "context"

//go:generate mockgen -destination=mocks/fetcher_mock.go -package=mocks github.com/watchmix/watchmix/internal/session WatchlistFetcher,AvailabilityFetcher

// WatchlistFetcher retrieves one user's watchlist as an ordered title list.
// Implementations map provider failures to the session error taxonomy
// (ErrNotFound, ErrInvalidInput, ErrUpstreamUnavailable); anything else is
// treated as an unknown failure. A cancelled context surfaces as ctx.Err().
type WatchlistFetcher interface {
	Watchlist(ctx context.Context, username string) ([]Title, error)
}

// AvailabilityFetcher retrieves the streaming options for one title in
// provider order. ErrNotFound means the title is simply unavailable
// anywhere, which callers treat as an empty result rather than a failure.
type AvailabilityFetcher interface {
	Availability(ctx context.Context, titleID string) ([]Option, error)
}
