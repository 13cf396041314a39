// Package http provides the HTTP client used for metadata API requests.
//
// The Client in this package handles:
//   - User-Agent headers
//   - Timeout handling
//   - Fetches that return the status code alongside the body
//
// # Basic Usage
//
//	client := http.NewClient(60 * time.Second)
//
//	// Status-preserving fetch
//	resp, err := client.Fetch(ctx, endpoint, params)
package http
