// Package motn is a client for the Movie of the Night streaming
// availability API (RapidAPI).
package motn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://streaming-availability.p.rapidapi.com"

// Sentinel errors for API responses.
var (
	ErrNotFound    = errors.New("motn: show not found")
	ErrRateLimited = errors.New("motn: rate limited")
	ErrUnavailable = errors.New("motn: unreachable")
)

// Client queries the streaming availability API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
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
		c.log = log.With("component", "motn")
	}
}

// New creates a streaming availability client.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchByTitle searches shows by title, with availability restricted to
// the given country. Results come back in the API's relevance order.
func (c *Client) SearchByTitle(ctx context.Context, title, country string) ([]Show, error) {
	start := time.Now()

	endpoint := c.baseURL + "/shows/search/title?" + url.Values{
		"title":   {title},
		"country": {country},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

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

	var shows []Show
	if err := json.NewDecoder(resp.Body).Decode(&shows); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if c.log != nil {
		c.log.Debug("title search completed", "title", title, "country", country,
			"results", len(shows), "duration_ms", time.Since(start).Milliseconds())
	}

	return shows, nil
}

// checkResponse maps HTTP status codes to sentinel errors.
func (c *Client) checkResponse(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	default:
		return fmt.Errorf("motn: unexpected status %s", resp.Status)
	}
}
