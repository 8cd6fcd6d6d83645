package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/watchmix/watchmix/internal/session"
	"github.com/watchmix/watchmix/pkg/motn"
	"github.com/watchmix/watchmix/pkg/title"
)

// AvailabilityService resolves streaming options for watchlist titles and
// implements session.AvailabilityFetcher. The availability API has no
// notion of watchlist IDs, so lookups go by title search: take the film's
// display name from the watchlist cache, strip the year suffix, search,
// and pick the result whose release year matches. When several results
// share the year, Jaro-Winkler title similarity breaks the tie.
type AvailabilityService struct {
	client  *motn.Client
	titles  *WatchlistService
	cache   *Cache
	country string
	ttl     time.Duration
	log     *slog.Logger
}

// NewAvailabilityService creates a cached availability service for one
// country.
func NewAvailabilityService(client *motn.Client, titles *WatchlistService, cache *Cache, country string, ttl time.Duration, log *slog.Logger) *AvailabilityService {
	if country == "" {
		country = "de"
	}
	if ttl <= 0 {
		ttl = DefaultAvailabilityTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &AvailabilityService{
		client:  client,
		titles:  titles,
		cache:   cache,
		country: country,
		ttl:     ttl,
		log:     log.With("component", "availability"),
	}
}

// Availability returns the streaming options for one title in provider
// order. session.ErrNotFound means the title could not be located on the
// availability side at all.
func (s *AvailabilityService) Availability(ctx context.Context, titleID string) ([]session.Option, error) {
	key := keyPrefixAvailability + titleID
	if data, ok := s.cache.Get(ctx, key); ok {
		var options []session.Option
		if err := json.Unmarshal(data, &options); err == nil {
			s.log.Debug("cache hit for availability", "title_id", titleID, "options", len(options))
			return options, nil
		}
		s.log.Warn("failed to unmarshal cached availability", "title_id", titleID)
	}

	entry, ok := s.titles.Title(ctx, titleID)
	if !ok {
		return nil, fmt.Errorf("%w: title %s not in watchlist cache", session.ErrNotFound, titleID)
	}

	name, year := title.SplitYear(entry.Name)

	shows, err := s.client.SearchByTitle(ctx, name, s.country)
	if err != nil {
		return nil, mapMOTNError(err)
	}

	show, ok := pickShow(name, year, shows)
	if !ok {
		return nil, fmt.Errorf("%w: no search result for %q (%d)", session.ErrNotFound, name, year)
	}

	options := convertOptions(show.StreamingOptions[s.country])

	if data, err := json.Marshal(options); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.log.Warn("failed to cache availability", "title_id", titleID, "error", err)
		}
	}

	s.log.Debug("availability resolved", "title_id", titleID, "show_id", show.ID,
		"options", len(options))
	return options, nil
}

// pickShow selects the search result for the wanted film. A matching
// release year is the primary signal; title similarity decides between
// multiple same-year results, or stands alone when the watchlist name
// carries no year.
func pickShow(name string, year int, shows []motn.Show) (motn.Show, bool) {
	candidates := shows
	if year != 0 {
		candidates = candidates[:0:0]
		for _, sh := range shows {
			if sh.ReleaseYear == year {
				candidates = append(candidates, sh)
			}
		}
	}
	if len(candidates) == 0 {
		return motn.Show{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}

	names := make([]string, len(candidates))
	for i, sh := range candidates {
		names[i] = sh.Title
	}
	m := title.Match(name, names)
	if m.Index < 0 {
		// All candidates share the release year but none resembles the
		// wanted title; fall back to the API's relevance order.
		return candidates[0], true
	}
	return candidates[m.Index], true
}

// convertOptions maps provider options into the session model, preserving
// provider order.
func convertOptions(options []motn.StreamingOption) []session.Option {
	converted := make([]session.Option, 0, len(options))
	for _, o := range options {
		opt := session.Option{
			ServiceID:   o.Service.ID,
			ServiceName: o.Service.Name,
			Kind:        session.OptionKind(o.Type),
			Link:        o.Link,
			Quality:     o.Quality,
			ExpiresSoon: o.ExpiresSoon,
			ExpiresOn:   o.ExpiresOn,
		}
		if o.Addon != nil {
			opt.ServiceName = o.Service.Name + " / " + o.Addon.Name
		}
		if o.Price != nil {
			opt.Price = o.Price.Formatted
		}
		for _, a := range o.Audios {
			opt.Audios = append(opt.Audios, a.Language)
		}
		for _, sub := range o.Subtitles {
			opt.Subtitles = append(opt.Subtitles, sub.Locale.Language)
		}
		converted = append(converted, opt)
	}
	return converted
}

// mapMOTNError translates client sentinels into the session taxonomy.
// Cancellation passes through untouched.
func mapMOTNError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, motn.ErrNotFound):
		return fmt.Errorf("%w: show not found", session.ErrNotFound)
	case errors.Is(err, motn.ErrRateLimited):
		return fmt.Errorf("%w: availability api quota exhausted", session.ErrRateLimited)
	case errors.Is(err, motn.ErrUnavailable):
		return fmt.Errorf("%w: failed to reach availability api", session.ErrUpstreamUnavailable)
	default:
		return err
	}
}
