package session

import "errors"

// Sentinel errors for provider fetch outcomes. Cancellation is not part of
// this taxonomy: a cancelled fetch surfaces context.Canceled and is dropped
// by the caller, never shown to the user.
var (
	// ErrNotFound is returned when the provider has no data for the
	// requested username or title.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when the provider rejects the request
	// shape, e.g. a malformed username.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable is returned when the provider itself cannot
	// reach its upstream data source.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrRateLimited is returned when the availability provider's quota
	// is exhausted.
	ErrRateLimited = errors.New("rate limited")
)

// UserError reports one user's failed watchlist fetch. Failures are
// collected per user so that succeeding users still contribute titles.
type UserError struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}
