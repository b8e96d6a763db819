// Package geoloc resolves an approximate user location through an
// ordered fallback chain: consent gate, IP-geolocation lookup, static
// default. Resolution is best effort; callers always receive a
// Location and never an error.
package geoloc

import (
	"context"
	"log/slog"
	"sync"

	"fuelmap/pkg/geoip"
)

// Location is a resolved (or fallback) user position. Coordinates are
// nil until a lookup supplies them and are never reverted to nil after
// a successful resolution.
type Location struct {
	CountryName string   `json:"country_name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Currency    string   `json:"currency,omitempty"`
}

// Resolved reports whether the location carries usable coordinates.
func (l Location) Resolved() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Coordinates returns the resolved position. ok is false when the
// location is a coordinate-less fallback.
func (l Location) Coordinates() (lat, lng float64, ok bool) {
	if !l.Resolved() {
		return 0, 0, false
	}
	return *l.Latitude, *l.Longitude, true
}

// Lookup is the IP-geolocation dependency.
type Lookup interface {
	Lookup(ctx context.Context) (*geoip.Result, error)
}

// Observer receives the location once a resolution attempt completes.
type Observer func(Location)

// Provider owns the location state. Exactly one resolution attempt is
// made per provider; there is no polling and no retry on failure.
type Provider struct {
	mu        sync.Mutex
	loc       Location
	fallback  Location
	resolved  bool
	gen       uint64
	lookup    Lookup
	log       *slog.Logger
	observers []Observer
}

// New creates a provider. fallback must carry the configured default
// country and its static coordinates; the initial published location is
// that country with no coordinates.
func New(lookup Lookup, fallback Location, logger *slog.Logger) *Provider {
	return &Provider{
		loc:      Location{CountryName: fallback.CountryName},
		fallback: fallback,
		lookup:   lookup,
		log:      logger,
	}
}

// Subscribe registers an observer notified when resolution completes.
func (p *Provider) Subscribe(fn Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// Location returns the current best-effort location.
func (p *Provider) Location() Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loc
}

// Resolve runs the fallback chain once and returns the outcome.
// consent models the device-geolocation permission: when denied, the
// result is the configured default country with nil coordinates (a
// fixed rule, replacing the upstream random country choice). When the
// lookup fails, the result is the fallback country with its static
// coordinates. Calling Resolve again returns the already-published
// location unchanged.
func (p *Provider) Resolve(ctx context.Context, consent bool) Location {
	p.mu.Lock()
	if p.resolved {
		loc := p.loc
		p.mu.Unlock()
		return loc
	}
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	if !consent {
		p.log.Warn("geolocation permission denied, using default country",
			"country", p.fallback.CountryName)
		return p.publish(gen, Location{CountryName: p.fallback.CountryName})
	}

	result, err := p.lookup.Lookup(ctx)
	if err != nil {
		p.log.Warn("geolocation lookup failed, using fallback location", "error", err)
		return p.publish(gen, p.fallback)
	}

	loc := Location{
		CountryName: result.CountryName,
		Latitude:    result.Latitude,
		Longitude:   result.Longitude,
		Currency:    result.Currency,
	}
	if loc.CountryName == "" {
		loc.CountryName = p.fallback.CountryName
	}
	return p.publish(gen, loc)
}

// publish installs the resolution outcome unless a newer attempt has
// superseded this one, then notifies observers outside the lock.
func (p *Provider) publish(gen uint64, loc Location) Location {
	p.mu.Lock()
	if p.resolved || gen != p.gen {
		stale := p.loc
		p.mu.Unlock()
		return stale
	}
	p.loc = loc
	p.resolved = true
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.Unlock()

	for _, fn := range observers {
		fn(loc)
	}
	return loc
}
