package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	httpclient "github.com/handiism/trackid-scraper/internal/http"
	"github.com/handiism/trackid-scraper/internal/lastfm/dto"
	"github.com/handiism/trackid-scraper/internal/model"
)

// Status classifies the outcome of one artist.getinfo request.
type Status int

const (
	// StatusFound means the API returned an artist payload.
	StatusFound Status = iota

	// StatusNotFound means a 200 response without an artist. Terminal.
	StatusNotFound

	// StatusRateLimited means HTTP 429. Retryable.
	StatusRateLimited

	// StatusHTTPError means any other non-200 status. Retryable.
	StatusHTTPError

	// StatusTransportError means the request or body decoding failed. Retryable.
	StatusTransportError
)

// String returns a short name for logs.
func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusNotFound:
		return "not_found"
	case StatusRateLimited:
		return "rate_limited"
	case StatusHTTPError:
		return "http_error"
	case StatusTransportError:
		return "transport_error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Retryable reports whether another attempt may succeed.
func (s Status) Retryable() bool {
	return s == StatusRateLimited || s == StatusHTTPError || s == StatusTransportError
}

// ErrRateLimited is carried by results with StatusRateLimited.
var ErrRateLimited = errors.New("rate limit reached")

// Result is the classified outcome of one lookup.
type Result struct {
	Status Status

	// Artist is set only for StatusFound.
	Artist *model.ArtistGenreInfo

	// StatusCode is the HTTP status, 0 on transport errors.
	StatusCode int

	// Err describes retryable failures.
	Err error
}

// Config configures a Client.
type Config struct {
	// Endpoint is the API root, e.g. "http://ws.audioscrobbler.com/2.0/".
	Endpoint string

	// APIKey is the Last.fm API key.
	APIKey string

	// HTTPClient is the transport. Required.
	HTTPClient *httpclient.Client
}

// Client queries the Last.fm artist.getinfo method.
//
// Example usage:
//
//	client := lastfm.NewClient(lastfm.Config{
//	    Endpoint:   "http://ws.audioscrobbler.com/2.0/",
//	    APIKey:     apiKey,
//	    HTTPClient: httpclient.NewClient(60 * time.Second),
//	})
//
//	res := client.ArtistInfo(ctx, "Burial")
//	if res.Status == lastfm.StatusFound {
//	    fmt.Println(res.Artist.JoinedGenres())
//	}
type Client struct {
	endpoint string
	apiKey   string
	http     *httpclient.Client
}

// NewClient creates a new Client.
func NewClient(cfg Config) *Client {
	return &Client{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		http:     cfg.HTTPClient,
	}
}

// ArtistInfo performs exactly one artist.getinfo request and classifies it.
//
// ArtistInfo never retries; the caller owns the retry policy.
func (c *Client) ArtistInfo(ctx context.Context, artist string) Result {
	params := url.Values{
		"method":  {"artist.getinfo"},
		"artist":  {artist},
		"api_key": {c.apiKey},
		"format":  {"json"},
	}

	resp, err := c.http.Fetch(ctx, c.endpoint, params)
	if err != nil {
		return Result{Status: StatusTransportError, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{Status: StatusRateLimited, StatusCode: resp.StatusCode, Err: ErrRateLimited}
	case resp.StatusCode != http.StatusOK:
		return Result{
			Status:     StatusHTTPError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d for artist %q", resp.StatusCode, artist),
		}
	}

	var body dto.JSONArtistInfo
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return Result{
			Status:     StatusTransportError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode artist.getinfo response: %w", err),
		}
	}

	if body.Artist == nil {
		return Result{Status: StatusNotFound, StatusCode: resp.StatusCode}
	}

	return Result{
		Status:     StatusFound,
		StatusCode: resp.StatusCode,
		Artist:     body.Artist.ToArtistGenreInfo(),
	}
}
