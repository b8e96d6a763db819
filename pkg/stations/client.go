// Package stations provides types and a client to fetch fuel station
// data from the remote station API and normalize it into the Station
// shape used by the rest of the application.
package stations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"fuelmap/pkg/geo"
)

const DefaultTimeout = 30 * time.Second

// ErrNotConfigured is returned when no base URL has been set. Callers
// treat this as "skip the load", not as a failure.
var ErrNotConfigured = errors.New("station API base URL not configured")

// Client fetches station records from the configured endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a station API client. An empty baseURL yields a
// client whose fetches report ErrNotConfigured.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Configured reports whether a base URL has been set.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

// FetchStations fetches the station collection and normalizes each
// record. Records with unusable coordinates are dropped; all other
// malformed fields are defaulted per the normalization rules.
func (c *Client) FetchStations(ctx context.Context) ([]Station, error) {
	if c.baseURL == "" {
		return nil, ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching stations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var raw []rawStation
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	return normalize(raw, time.Now().UTC()), nil
}

// normalize maps raw wire records into Stations. now is used to default
// a missing last_updated, which means repeated fetches of the same
// under-specified record can show different ages; callers tolerate this.
func normalize(raw []rawStation, now time.Time) []Station {
	out := make([]Station, 0, len(raw))
	for i := range raw {
		st, ok := normalizeStation(&raw[i], now)
		if !ok {
			continue
		}
		out = append(out, st)
	}
	return out
}

func normalizeStation(r *rawStation, now time.Time) (Station, bool) {
	loc := geo.Coordinates{Lat: r.Latitude, Lng: r.Longitude}
	if !loc.Valid() {
		return Station{}, false
	}

	lastUpdated := r.LastUpdated
	if lastUpdated == "" {
		lastUpdated = now.Format(time.RFC3339)
	}

	return Station{
		ID:                r.ID,
		Name:              r.Name,
		Address:           r.Address,
		Location:          loc,
		FuelPrices:        r.FuelPrices,
		Services:          r.Services,
		OperatingHours:    r.OperatingHours,
		Rating:            parseRating(r.Rating),
		AdditiveAvailable: r.AdditiveAvailable,
		RewardsSupported:  r.RewardsSupported,
		IsPartnerStation:  r.IsPartnerStation,
		FuelStockLevels:   r.FuelStockLevels,
		LastUpdated:       lastUpdated,
	}, true
}
