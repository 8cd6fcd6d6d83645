package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/watchmix/watchmix/internal/session"
	"github.com/watchmix/watchmix/pkg/letterboxd"
)

// Default cache TTLs per response kind.
const (
	DefaultWatchlistTTL    = time.Hour
	DefaultAvailabilityTTL = 7 * 24 * time.Hour
	DefaultPosterTTL       = 365 * 24 * time.Hour
)

// Cache key prefixes.
const (
	keyPrefixWatchlist    = "watchlist:"
	keyPrefixMovie        = "movie:"
	keyPrefixAvailability = "availability:"
	keyPrefixPoster       = "poster:"
)

// usernameRegex is the accepted Letterboxd username shape.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]{2,15}$`)

// WatchlistService provides cached watchlist access and implements
// session.WatchlistFetcher. Scraped films are also cached individually by
// ID so the availability service can resolve a title's display name
// without re-scraping.
type WatchlistService struct {
	client *letterboxd.Client
	cache  *Cache
	ttl    time.Duration
	log    *slog.Logger
}

// NewWatchlistService creates a cached watchlist service.
func NewWatchlistService(client *letterboxd.Client, cache *Cache, ttl time.Duration, log *slog.Logger) *WatchlistService {
	if ttl <= 0 {
		ttl = DefaultWatchlistTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &WatchlistService{
		client: client,
		cache:  cache,
		ttl:    ttl,
		log:    log.With("component", "watchlist"),
	}
}

// Watchlist returns the ordered watchlist for a username, mapping provider
// failures to the session error taxonomy.
func (s *WatchlistService) Watchlist(ctx context.Context, username string) ([]session.Title, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernameRegex.MatchString(username) {
		return nil, fmt.Errorf("%w: username must be 2-15 characters of letters, digits, _ or -", session.ErrInvalidInput)
	}

	key := keyPrefixWatchlist + username
	if data, ok := s.cache.Get(ctx, key); ok {
		var titles []session.Title
		if err := json.Unmarshal(data, &titles); err == nil {
			s.log.Debug("cache hit for watchlist", "username", username, "titles", len(titles))
			return titles, nil
		}
		s.log.Warn("failed to unmarshal cached watchlist", "username", username)
	}

	films, err := s.client.Watchlist(ctx, username)
	if err != nil {
		return nil, mapLetterboxdError(err)
	}

	titles := make([]session.Title, len(films))
	for i, f := range films {
		titles[i] = session.Title{
			ID:   f.ID,
			Name: f.Name,
			Slug: f.Slug,
			URL:  f.URL(),
		}
		s.cacheTitle(ctx, titles[i])
	}

	if data, err := json.Marshal(titles); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.Warn("failed to cache watchlist", "username", username, "error", err)
		}
	}

	return titles, nil
}

// Poster returns the cached poster JPEG for a film.
func (s *WatchlistService) Poster(ctx context.Context, slug, id string) ([]byte, error) {
	key := keyPrefixPoster + id
	if data, ok := s.cache.Get(ctx, key); ok {
		s.log.Debug("cache hit for poster", "id", id)
		return data, nil
	}

	data, err := s.client.Poster(ctx, slug, id)
	if err != nil {
		return nil, mapLetterboxdError(err)
	}

	if err := s.cache.Set(ctx, key, data, DefaultPosterTTL); err != nil {
		s.log.Warn("failed to cache poster", "id", id, "error", err)
	}

	return data, nil
}

// Title resolves a previously scraped title by ID from the cache.
func (s *WatchlistService) Title(ctx context.Context, id string) (session.Title, bool) {
	data, ok := s.cache.Get(ctx, keyPrefixMovie+id)
	if !ok {
		return session.Title{}, false
	}
	var t session.Title
	if err := json.Unmarshal(data, &t); err != nil {
		return session.Title{}, false
	}
	return t, true
}

// cacheTitle stores one film keyed by ID. Movie identity does not change,
// so these entries use the long poster TTL rather than the watchlist TTL.
func (s *WatchlistService) cacheTitle(ctx context.Context, t session.Title) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, keyPrefixMovie+t.ID, data, DefaultPosterTTL); err != nil {
		s.log.Warn("failed to cache title", "id", t.ID, "error", err)
	}
}

// mapLetterboxdError translates client sentinels into the session
// taxonomy. Cancellation passes through untouched.
func mapLetterboxdError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, letterboxd.ErrNotFound):
		return fmt.Errorf("%w: watchlist not found", session.ErrNotFound)
	case errors.Is(err, letterboxd.ErrUnavailable):
		return fmt.Errorf("%w: failed to reach letterboxd", session.ErrUpstreamUnavailable)
	default:
		return err
	}
}
