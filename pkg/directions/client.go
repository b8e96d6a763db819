// Package directions provides a client for the driving-directions
// service. Requests carry origin;destination coordinate pairs and an
// access credential; responses expose the first route's GeoJSON
// geometry and bounding box.
package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fuelmap/pkg/geo"
)

const (
	DefaultBaseURL = "https://api.mapbox.com/directions/v5/mapbox/driving"
	DefaultTimeout = 15 * time.Second
)

// Geometry is a GeoJSON geometry. Coordinates are [lng, lat] pairs.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// Route is a single returned route.
type Route struct {
	Geometry Geometry    `json:"geometry"`
	Bounds   *geo.Bounds `json:"bounds,omitempty"`
}

type response struct {
	Routes []Route `json:"routes"`
}

// Client fetches driving routes.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a directions client. An empty baseURL selects the
// default provider. An empty accessToken leaves the client unconfigured;
// Configured reports this so callers can degrade gracefully.
func NewClient(baseURL, accessToken string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Configured reports whether an access credential has been set.
func (c *Client) Configured() bool {
	return c.accessToken != ""
}

// Routes fetches driving routes from origin to destination. An empty
// result slice is a valid response and means the provider found no
// route; callers must treat it as a no-op, not a clear.
func (c *Client) Routes(ctx context.Context, origin, dest geo.Coordinates) ([]Route, error) {
	reqURL := fmt.Sprintf("%s/%f,%f;%f,%f?geometries=geojson&access_token=%s",
		c.baseURL, origin.Lng, origin.Lat, dest.Lng, dest.Lat,
		url.QueryEscape(c.accessToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching directions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var parsed response
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("error unmarshaling JSON: %w", err)
	}

	return parsed.Routes, nil
}
