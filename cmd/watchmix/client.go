package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/watchmix/watchmix/internal/session"
)

// Client wraps HTTP calls to the watchmix server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new watchmix API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) get(path string, result any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) post(path string, body any, result any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

func (c *Client) put(path string, body any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("request creation failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server error %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// Watchlist fetches one user's watchlist.
func (c *Client) Watchlist(username string) ([]session.Title, error) {
	var titles []session.Title
	err := c.get("/api/v1/watchlist?username="+url.QueryEscape(username), &titles)
	return titles, err
}

// Availability fetches the streaming options for one movie.
func (c *Client) Availability(movieID string) ([]session.Option, error) {
	var options []session.Option
	err := c.get("/api/v1/availability?movie_id="+url.QueryEscape(movieID), &options)
	return options, err
}

// SubmitQuery starts a new merged query on the server.
func (c *Client) SubmitQuery(usernames []string) (session.Snapshot, error) {
	var snap session.Snapshot
	err := c.post("/api/v1/query", map[string][]string{"usernames": usernames}, &snap)
	return snap, err
}

// Collection fetches the current ranked collection view.
func (c *Client) Collection() (session.Snapshot, error) {
	var snap session.Snapshot
	err := c.get("/api/v1/collection", &snap)
	return snap, err
}

// UpdateFilters replaces the server-side filter selection.
func (c *Client) UpdateFilters(filters session.FilterSelection) error {
	return c.put("/api/v1/filters", filters)
}
