package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent is sent with every request unless overridden.
const DefaultUserAgent = "trackid-scraper"

// Client wraps HTTP operations with a fixed User-Agent and timeout.
//
// Client provides:
//   - Configured User-Agent header
//   - Timeout handling
//   - Status-preserving fetches for callers that classify responses
//
// Example usage:
//
//	client := NewClient(30 * time.Second)
//
//	resp, err := client.Fetch(ctx, endpoint, url.Values{"format": {"json"}})
//	if err != nil {
//	    // transport failure
//	}
//	if resp.StatusCode == http.StatusTooManyRequests {
//	    // back off
//	}
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client with the given timeout.
//
// A zero timeout falls back to 60 seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: DefaultUserAgent,
	}
}

// Response is a fully read HTTP response.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Body is the complete response body.
	Body []byte
}

// Fetch performs a GET request with the given query parameters and returns
// the status code and body without judging the status.
//
// Returns an error only if:
//   - The URL cannot be parsed
//   - The request fails at the transport level
//   - Reading the body fails
//
// Example:
//
//	resp, err := client.Fetch(ctx, "http://ws.audioscrobbler.com/2.0/", params)
func (c *Client) Fetch(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}
