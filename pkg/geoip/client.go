// Package geoip provides a client for IP-based geolocation lookups.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultURL     = "https://ipapi.co/json/"
	DefaultTimeout = 10 * time.Second
)

// Result is the subset of the lookup response the application uses.
// Coordinates are pointers: nil means the provider did not report them.
type Result struct {
	CountryName string   `json:"country_name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Currency    string   `json:"currency"`
}

// Client looks up an approximate location for the caller's public IP.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a geolocation client. An empty url selects the
// default public endpoint.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Lookup performs a single geolocation lookup.
func (c *Client) Lookup(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching geolocation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	return &result, nil
}
