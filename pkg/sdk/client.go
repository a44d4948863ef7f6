// Package slidedex is a thin typed client for the slidedex HTTP API.
package slidedex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to a slidedex server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Query runs a filtered slide query. An invalid filter specification is
// not an error: the server fails closed and the response is empty.
func (c *Client) Query(ctx context.Context, req QueryRequest) (QueryResponse, error) {
	var resp QueryResponse
	err := c.do(ctx, http.MethodPost, "/v1/decks/query", req, &resp)
	return resp, err
}

// ResolveSlideNumbers resolves a range specification against a deck.
// SlideNumbers accepts the wire forms the server does: a number, an
// array of numbers, or a range string such as "5:8".
func (c *Client) ResolveSlideNumbers(ctx context.Context, path string, slideNumbers any) ([]int, error) {
	body := map[string]any{"path": path}
	if slideNumbers != nil {
		body["slide_numbers"] = slideNumbers
	}

	var resp struct {
		SlideNumbers []int `json:"slide_numbers"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/decks/resolve", body, &resp); err != nil {
		return nil, err
	}
	return resp.SlideNumbers, nil
}

// GetSlideInfo returns one slide trimmed to the requested attributes; an
// empty attribute list returns the full slide.
func (c *Client) GetSlideInfo(ctx context.Context, path string, slideNumber int, attributes []string) (SlideInfo, error) {
	body := map[string]any{
		"path":         path,
		"slide_number": slideNumber,
	}
	if len(attributes) > 0 {
		body["attributes"] = attributes
	}

	var resp SlideInfo
	err := c.do(ctx, http.MethodPost, "/v1/decks/slide", body, &resp)
	return resp, err
}

// GetCacheStats reports the server's deck cache occupancy.
func (c *Client) GetCacheStats(ctx context.Context) (CacheStats, error) {
	var resp struct {
		DeckCache CacheStats `json:"deck_cache"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/cache/stats", nil, &resp)
	return resp.DeckCache, err
}

// CleanupCache removes expired deck cache entries and returns the count.
func (c *Client) CleanupCache(ctx context.Context) (int, error) {
	var resp struct {
		Removed int `json:"removed"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/cache/cleanup", nil, &resp)
	return resp.Removed, err
}

// ClearCache empties every server-side cache layer.
func (c *Client) ClearCache(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/v1/cache", nil, nil)
}

// InvalidateDeck drops the server's cached state for one deck path,
// reporting whether an entry existed.
func (c *Client) InvalidateDeck(ctx context.Context, path string) (bool, error) {
	var resp struct {
		Invalidated bool `json:"invalidated"`
	}
	endpoint := "/v1/cache?path=" + url.QueryEscape(path)
	err := c.do(ctx, http.MethodDelete, endpoint, nil, &resp)
	return resp.Invalidated, err
}

// Health fetches the server's health report.
func (c *Client) Health(ctx context.Context) (HealthReport, error) {
	var resp HealthReport
	err := c.do(ctx, http.MethodGet, "/health", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("slidedex: encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("slidedex: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slidedex: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return apiErrorFromResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("slidedex: decode response: %w", err)
	}
	return nil
}
