// Package geo holds the coordinate and bounding-box types shared by the
// station, geolocation and directions packages.
package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite degrees.
func (c Coordinates) Valid() bool {
	return finite(c.Lat) && finite(c.Lng) &&
		c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// Bounds is a bounding box in WGS84 degrees.
type Bounds struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Coordinates {
	return Coordinates{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lng: (b.MinLng + b.MaxLng) / 2,
	}
}

// Extend grows the box to include p. A zero Bounds is treated as empty.
func (b Bounds) Extend(p Coordinates) Bounds {
	if b == (Bounds{}) {
		return Bounds{MinLng: p.Lng, MinLat: p.Lat, MaxLng: p.Lng, MaxLat: p.Lat}
	}
	return Bounds{
		MinLng: math.Min(b.MinLng, p.Lng),
		MinLat: math.Min(b.MinLat, p.Lat),
		MaxLng: math.Max(b.MaxLng, p.Lng),
		MaxLat: math.Max(b.MaxLat, p.Lat),
	}
}

// UnmarshalJSON accepts the [[minLng,minLat],[maxLng,maxLat]] pair form
// used by directions providers.
func (b *Bounds) UnmarshalJSON(data []byte) error {
	var pairs [][]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("error unmarshaling bounds: %w", err)
	}
	if len(pairs) != 2 || len(pairs[0]) < 2 || len(pairs[1]) < 2 {
		return fmt.Errorf("unexpected bounds shape")
	}
	b.MinLng, b.MinLat = pairs[0][0], pairs[0][1]
	b.MaxLng, b.MaxLat = pairs[1][0], pairs[1][1]
	return nil
}

// MarshalJSON emits the same pair form UnmarshalJSON accepts.
func (b Bounds) MarshalJSON() ([]byte, error) {
	return json.Marshal([][]float64{
		{b.MinLng, b.MinLat},
		{b.MaxLng, b.MaxLat},
	})
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
