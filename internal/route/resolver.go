// Package route owns the single active route overlay. A resolved route
// replaces the previous overlay; failures and empty responses leave the
// prior overlay untouched.
package route

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"fuelmap/pkg/directions"
	"fuelmap/pkg/geo"
)

// Directions is the remote directions dependency.
type Directions interface {
	Routes(ctx context.Context, origin, dest geo.Coordinates) ([]directions.Route, error)
}

// FitHandler receives the resolved route's bounds so the camera can be
// adjusted to frame it.
type FitHandler func(b geo.Bounds)

// Overlay is the single active route geometry.
type Overlay struct {
	Geometry  directions.Geometry `json:"geometry"`
	Bounds    *geo.Bounds         `json:"bounds,omitempty"`
	RequestID string              `json:"request_id"`
}

// Resolver requests driving routes and publishes at most one overlay.
type Resolver struct {
	mu      sync.Mutex
	overlay *Overlay
	issued  uint64
	svc     Directions
	onFit   FitHandler
	log     *slog.Logger
}

// New creates a resolver with no active overlay.
func New(svc Directions, logger *slog.Logger) *Resolver {
	return &Resolver{svc: svc, log: logger}
}

// SetFitHandler sets the camera bounds-fit side effect.
func (r *Resolver) SetFitHandler(fn FitHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onFit = fn
}

// RequestRoute fetches a driving route from origin to dest and installs
// it as the active overlay. A nil origin is a no-op: no remote call is
// made and no state changes. Transport failures and empty route lists
// are also no-ops; the prior overlay, if any, remains. When requests
// overlap, only the response to the most recently issued request is
// applied; stale responses are discarded.
func (r *Resolver) RequestRoute(ctx context.Context, origin *geo.Coordinates, dest geo.Coordinates) error {
	if origin == nil {
		return nil
	}

	r.mu.Lock()
	r.issued++
	gen := r.issued
	r.mu.Unlock()

	requestID := uuid.NewString()
	r.log.Debug("requesting route", "request_id", requestID,
		"origin_lat", origin.Lat, "origin_lng", origin.Lng,
		"dest_lat", dest.Lat, "dest_lng", dest.Lng)

	routes, err := r.svc.Routes(ctx, *origin, dest)
	if err != nil {
		r.log.Warn("directions request failed", "request_id", requestID, "error", err)
		return fmt.Errorf("error fetching route: %w", err)
	}
	if len(routes) == 0 {
		r.log.Debug("no routes returned, keeping prior overlay", "request_id", requestID)
		return nil
	}

	first := routes[0]
	r.mu.Lock()
	if gen != r.issued {
		r.mu.Unlock()
		r.log.Debug("stale route response discarded", "request_id", requestID)
		return nil
	}
	r.overlay = &Overlay{
		Geometry:  first.Geometry,
		Bounds:    first.Bounds,
		RequestID: requestID,
	}
	onFit := r.onFit
	r.mu.Unlock()

	if first.Bounds != nil && onFit != nil {
		onFit(*first.Bounds)
	}
	return nil
}

// Route returns a copy of the active overlay, or nil.
func (r *Resolver) Route() *Overlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overlay == nil {
		return nil
	}
	cp := *r.overlay
	return &cp
}

// ClearRoute removes the active overlay. Clearing the station selection
// does not call this; route removal is always explicit.
func (r *Resolver) ClearRoute() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overlay = nil
}
