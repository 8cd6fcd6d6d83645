package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/watchmix/watchmix/internal/events"
)

// RankedTitle is one entry of the computed view: the owned title, its
// current availability state, and its score under the active filters.
type RankedTitle struct {
	OwnedTitle
	State TitleState `json:"state"`
	Score int        `json:"score"`
}

// Snapshot is a point-in-time copy of the session's visible state.
type Snapshot struct {
	Generation uint64          `json:"generation"`
	Usernames  []string        `json:"usernames"`
	UserErrors []UserError     `json:"user_errors,omitempty"`
	Filters    FilterSelection `json:"filters"`
	Titles     []RankedTitle   `json:"titles"`
}

// Session owns the merged collection, the per-title availability states,
// and the current query generation. One Session serves one logical user
// session; all mutation goes through its lock, and every asynchronous
// write re-checks the generation before applying.
type Session struct {
	watchlists   WatchlistFetcher
	availability AvailabilityFetcher
	bus          *events.Bus
	log          *slog.Logger

	mu         sync.Mutex
	gen        uint64
	cancel     context.CancelFunc
	usernames  []string
	collection []OwnedTitle
	states     map[string]TitleState
	userErrors []UserError
	filters    FilterSelection
	view       []RankedTitle

	refresh *debouncer
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithDebounce overrides the view recompute coalescing window.
func WithDebounce(d time.Duration) SessionOption {
	return func(s *Session) {
		s.refresh = newDebouncer(d, s.recompute)
	}
}

// New creates a session over the given fetchers. Change notifications go
// out on the bus; pass a nil logger to discard debug output.
func New(watchlists WatchlistFetcher, availability AvailabilityFetcher, bus *events.Bus, log *slog.Logger, opts ...SessionOption) *Session {
	if log == nil {
		log = slog.Default()
	}
	s := &Session{
		watchlists:   watchlists,
		availability: availability,
		bus:          bus,
		log:          log.With("component", "session"),
		states:       make(map[string]TitleState),
	}
	s.refresh = newDebouncer(DefaultDebounce, s.recompute)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitQuery starts a new query generation for the given usernames. It
// fetches all watchlists in parallel, installs the merged collection with
// every title in the loading state, and launches one availability fetch
// per title. The call returns once availability fetches are launched;
// results stream in via bus events. Any in-flight work from the previous
// generation is cancelled and its late results are dropped.
func (s *Session) SubmitQuery(ctx context.Context, usernames []string) (uint64, error) {
	cleaned := make([]string, 0, len(usernames))
	for _, u := range usernames {
		u = strings.TrimSpace(u)
		if u != "" {
			cleaned = append(cleaned, u)
		}
	}
	if len(cleaned) == 0 {
		return 0, fmt.Errorf("%w: no usernames given", ErrInvalidInput)
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
	}
	// Detach from the caller's context so availability fetches outlive the
	// submitting request; cancellation is owned by the generation.
	genCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.usernames = cleaned
	s.mu.Unlock()

	s.log.Info("query started", "generation", gen, "usernames", cleaned)
	s.bus.Publish(events.NewQueryStarted(gen, cleaned))

	results := s.fetchWatchlists(genCtx, cleaned)
	merged, userErrs := Merge(cleaned, results)

	s.mu.Lock()
	if gen != s.gen {
		// Superseded while fetching watchlists; drop everything.
		s.mu.Unlock()
		s.log.Debug("query superseded during watchlist fetch", "generation", gen)
		return gen, nil
	}

	s.collection = merged
	s.userErrors = userErrs
	s.states = make(map[string]TitleState, len(merged))
	for _, t := range merged {
		s.states[t.ID] = TitleState{Status: StatusLoading, Generation: gen}
	}
	s.mu.Unlock()

	s.log.Info("collection merged",
		"generation", gen, "titles", len(merged), "failed_users", len(userErrs))
	s.bus.Publish(events.NewCollectionChanged(gen, len(merged)))

	for _, t := range merged {
		go s.fetchTitle(genCtx, gen, t.ID)
	}

	s.recompute()
	return gen, nil
}

// fetchWatchlists retrieves all users' watchlists in parallel and returns
// the per-user outcomes. Per-user failures are captured, not propagated.
func (s *Session) fetchWatchlists(ctx context.Context, usernames []string) map[string]FetchResult {
	type userResult struct {
		username string
		result   FetchResult
	}

	results := make(chan userResult, len(usernames))
	var wg sync.WaitGroup

	for _, username := range usernames {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			start := time.Now()
			titles, err := s.watchlists.Watchlist(ctx, u)
			if err != nil {
				s.log.Warn("watchlist fetch failed", "username", u, "error", err,
					"duration_ms", time.Since(start).Milliseconds())
			} else {
				s.log.Debug("watchlist fetched", "username", u, "titles", len(titles),
					"duration_ms", time.Since(start).Milliseconds())
			}
			results <- userResult{username: u, result: FetchResult{Titles: titles, Err: err}}
		}(username)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	byUser := make(map[string]FetchResult, len(usernames))
	for r := range results {
		byUser[r.username] = r.result
	}
	return byUser
}

// fetchTitle resolves one title's availability and writes the outcome if
// its generation is still current. A provider ErrNotFound means the title
// is unavailable everywhere and resolves to success with zero options.
// Cancelled fetches are dropped without a state write.
func (s *Session) fetchTitle(ctx context.Context, gen uint64, titleID string) {
	options, err := s.availability.Availability(ctx, titleID)

	state := TitleState{Generation: gen}
	switch {
	case err == nil:
		state.Status = StatusSuccess
		state.Options = GroupOptions(options)
	case errors.Is(err, context.Canceled), ctx.Err() != nil:
		return
	case errors.Is(err, ErrNotFound):
		state.Status = StatusSuccess
		state.Options = map[string][]Option{}
	default:
		state.Status = StatusError
		state.Err = err.Error()
	}

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.log.Debug("dropping stale availability result", "title_id", titleID, "generation", gen)
		return
	}
	s.states[titleID] = state
	s.mu.Unlock()

	s.bus.Publish(events.NewTitleUpdated(titleID, gen, string(state.Status)))
	s.refresh.Trigger()
}

// UpdateFilters replaces the filter selection and schedules a debounced
// view recompute.
func (s *Session) UpdateFilters(filters FilterSelection) {
	s.mu.Lock()
	s.filters = filters
	s.mu.Unlock()
	s.refresh.Trigger()
}

// recompute rebuilds the ranked, filtered view from the latest state.
func (s *Session) recompute() {
	s.mu.Lock()
	visible := ApplyIntersection(s.collection, len(s.usernames), s.filters)
	ranked, scores := rankScored(visible, s.states, s.filters)

	view := make([]RankedTitle, len(ranked))
	for i, t := range ranked {
		view[i] = RankedTitle{
			OwnedTitle: t,
			State:      s.states[t.ID],
			Score:      scores[t.ID],
		}
	}
	s.view = view
	gen := s.gen
	s.mu.Unlock()

	s.bus.Publish(events.NewViewUpdated(gen, len(view)))
}

// Snapshot returns a copy of the current visible state. Any pending
// debounced recompute is applied first.
func (s *Session) Snapshot() Snapshot {
	s.refresh.Flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Generation: s.gen,
		Usernames:  append([]string(nil), s.usernames...),
		UserErrors: append([]UserError(nil), s.userErrors...),
		Filters:    s.filters,
		Titles:     append([]RankedTitle(nil), s.view...),
	}
	return snap
}

// Generation returns the current query generation.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Close cancels any in-flight fetches and stops the view refresher.
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.refresh.Stop()
}
