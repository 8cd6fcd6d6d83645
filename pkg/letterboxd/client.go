// Package letterboxd is a scraping client for Letterboxd watchlist and
// poster pages. Letterboxd has no public API; watchlists are parsed out
// of the public HTML grid.
package letterboxd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL       = "https://letterboxd.com"
	defaultPosterBaseURL = "https://a.ltrbxd.com/resized/film-poster"
)

// Sentinel errors for Letterboxd responses.
var (
	ErrNotFound    = errors.New("letterboxd: not found")
	ErrUnavailable = errors.New("letterboxd: unreachable")
)

// Film is one watchlist entry as scraped from the grid. Name carries the
// full display name including the release year suffix, e.g.
// "The Godfather (1972)".
type Film struct {
	ID   string
	Name string
	Slug string
}

// URL returns the canonical film page address.
func (f Film) URL() string {
	return defaultBaseURL + "/film/" + f.Slug + "/"
}

// Client scrapes Letterboxd pages.
type Client struct {
	baseURL       string
	posterBaseURL string
	httpClient    *http.Client
	log           *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom site base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithPosterBaseURL sets a custom poster CDN base URL (for testing).
func WithPosterBaseURL(url string) Option {
	return func(c *Client) {
		c.posterBaseURL = strings.TrimRight(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "letterboxd")
	}
}

// New creates a Letterboxd client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:       defaultBaseURL,
		posterBaseURL: defaultPosterBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Watchlist scrapes the full watchlist for a username, following
// pagination links. The result preserves the site's list order.
func (c *Client) Watchlist(ctx context.Context, username string) ([]Film, error) {
	start := time.Now()
	listURL := fmt.Sprintf("%s/%s/watchlist/", c.baseURL, username)

	body, err := c.getPage(ctx, listURL)
	if err != nil {
		return nil, err
	}

	films, pages, err := parseWatchlistPage(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}

	for page := 2; page <= pages; page++ {
		body, err := c.getPage(ctx, fmt.Sprintf("%spage/%d/", listURL, page))
		if err != nil {
			return nil, err
		}
		pageFilms, _, err := parseWatchlistPage(strings.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parse watchlist page %d: %w", page, err)
		}
		films = append(films, pageFilms...)
	}

	if c.log != nil {
		c.log.Debug("watchlist scraped", "username", username, "films", len(films),
			"pages", pages, "duration_ms", time.Since(start).Milliseconds())
	}

	return films, nil
}

// Poster fetches the resized poster JPEG for a film. The CDN path encodes
// the film ID one digit per directory.
func (c *Client) Poster(ctx context.Context, slug, id string) ([]byte, error) {
	if slug == "" || id == "" {
		return nil, fmt.Errorf("%w: missing slug or id", ErrNotFound)
	}

	posterURL := fmt.Sprintf("%s/%s/%s-%s-0-460-0-690-crop.jpg",
		c.posterBaseURL, splitDigits(id), id, slug)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, posterURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp); err != nil {
		return nil, err
	}

	return io.ReadAll(resp.Body)
}

// getPage fetches one HTML page and returns its body.
func (c *Client) getPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp); err != nil {
		return "", err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(body), nil
}

// checkResponse maps HTTP status codes to sentinel errors.
func (c *Client) checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusForbidden, resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return fmt.Errorf("letterboxd: unexpected status %s", resp.Status)
	}
}

// splitDigits turns "51568" into "5/1/5/6/8", the poster CDN path form.
func splitDigits(id string) string {
	parts := make([]string, 0, len(id))
	for _, r := range id {
		parts = append(parts, string(r))
	}
	return strings.Join(parts, "/")
}
