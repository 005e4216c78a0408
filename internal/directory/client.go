// Package directory implements the HTTP client for the remote people
// directory: search by query and fetch a full profile by username.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/starford/mannaz/internal/apperr"
)

// Client talks to a single configured directory endpoint over HTTP+JSON.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the logger used for request-level debug logging.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a directory client for the given base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Results []ProfileSummary `json:"results"`
}

// SearchProfiles runs a directory search and returns matching summaries.
// Any transport or non-2xx failure is reported as apperr.ErrUnavailable.
func (c *Client) SearchProfiles(ctx context.Context, query string) ([]ProfileSummary, error) {
	body, err := json.Marshal(searchRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("directory: encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/people/_search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("directory: build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: search %q: %w: %w", query, apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory: search %q: status %d: %w", query, resp.StatusCode, apperr.ErrUnavailable)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("directory: decode search response: %w: %w", apperr.ErrUnavailable, err)
	}
	return out.Results, nil
}

// FetchProfile fetches the full profile for a username. Unknown usernames
// are reported as apperr.ErrNotFound, everything else as ErrUnavailable.
func (c *Client) FetchProfile(ctx context.Context, username string) (*ProfileDetail, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/genome/"+url.PathEscape(username), nil)
	if err != nil {
		return nil, fmt.Errorf("directory: build fetch request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("directory: fetch %q: %w: %w", username, apperr.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("directory: fetch %q: %w", username, apperr.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("directory: fetch %q: status %d: %w", username, resp.StatusCode, apperr.ErrUnavailable)
	}

	var p ProfileDetail
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("directory: decode profile: %w: %w", apperr.ErrUnavailable, err)
	}
	return &p, nil
}

// do attaches a request ID for log correlation and executes the request.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("directory: request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("request_id", reqID),
			slog.String("error", err.Error()))
		return nil, err
	}
	c.logger.Debug("directory: request done",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("request_id", reqID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))
	return resp, nil
}
