// Package session composes the geolocation provider, station
// directory, selection coordinator, viewport controller and route
// resolver into the dashboard state machine: location resolution
// centers the camera once, selecting a station flies to it, a resolved
// route fits the camera to its bounds.
package session

import (
	"context"
	"log/slog"
	"sync"

	"fuelmap/internal/directory"
	"fuelmap/internal/geoloc"
	"fuelmap/internal/route"
	"fuelmap/internal/selection"
	"fuelmap/internal/viewport"
	"fuelmap/pkg/geo"
	"fuelmap/pkg/stations"
)

// Options carries the location fallback configuration.
type Options struct {
	DefaultCountry   string
	DefaultLatitude  float64
	DefaultLongitude float64
}

// Session wires the core components. Each piece of state stays owned by
// its component; the session only connects their side effects.
type Session struct {
	Geoloc    *geoloc.Provider
	Directory *directory.Directory
	Viewport  *viewport.Controller
	Selection *selection.Coordinator
	Routes    *route.Resolver

	mu       sync.Mutex
	centered bool
	log      *slog.Logger
}

// New builds a session. The camera starts on the configured fallback
// center at the default zoom.
func New(opts Options, lookup geoloc.Lookup, fetcher directory.Fetcher, dirsvc route.Directions, logger *slog.Logger) *Session {
	lat, lng := opts.DefaultLatitude, opts.DefaultLongitude
	fallback := geoloc.Location{
		CountryName: opts.DefaultCountry,
		Latitude:    &lat,
		Longitude:   &lng,
	}

	s := &Session{
		Geoloc:    geoloc.New(lookup, fallback, logger),
		Directory: directory.New(fetcher, logger),
		Viewport:  viewport.New(viewport.Viewport{Longitude: lng, Latitude: lat, Zoom: viewport.DefaultZoom}),
		Selection: selection.New(),
		Routes:    route.New(dirsvc, logger),
		log:       logger,
	}

	s.Geoloc.Subscribe(s.onLocation)
	s.Selection.SetFocusHandler(func(st stations.Station) {
		s.Viewport.FlyTo(st.Location.Lat, st.Location.Lng, viewport.StationZoom, viewport.DefaultDuration)
	})
	s.Routes.SetFitHandler(func(b geo.Bounds) {
		s.Viewport.FitBounds(b, viewport.BoundsPadding, viewport.DefaultDuration)
	})

	return s
}

// onLocation centers the camera on the first resolved location, once.
// Coordinate-less fallbacks leave the camera on the static center.
func (s *Session) onLocation(loc geoloc.Location) {
	lat, lng, ok := loc.Coordinates()
	if !ok {
		return
	}
	s.mu.Lock()
	if s.centered {
		s.mu.Unlock()
		return
	}
	s.centered = true
	s.mu.Unlock()
	s.Viewport.FlyTo(lat, lng, viewport.LocationZoom, viewport.DefaultDuration)
}

// Start resolves the location and loads the station directory. The two
// fetches are independent and may complete in either order.
func (s *Session) Start(ctx context.Context, consent bool) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Geoloc.Resolve(ctx, consent)
	}()
	go func() {
		defer wg.Done()
		s.Directory.Load(ctx)
	}()
	wg.Wait()
}

// SelectStation selects a station from the directory by ID. Unknown
// IDs are ignored.
func (s *Session) SelectStation(id int64) bool {
	st, ok := s.Directory.Station(id)
	if !ok {
		return false
	}
	s.Selection.Select(&st)
	return true
}

// ClearSelection clears the selection and closes any open detail view.
// The route overlay, if any, stays visible.
func (s *Session) ClearSelection() {
	s.Selection.Select(nil)
}

// GetDirections requests a driving route from the resolved user
// location to the selected station. With no resolved origin or no
// selection it is a no-op: no remote call, no camera or overlay change.
func (s *Session) GetDirections(ctx context.Context) error {
	dest := s.Selection.Selected()
	if dest == nil {
		return nil
	}
	loc := s.Geoloc.Location()
	lat, lng, ok := loc.Coordinates()
	if !ok {
		s.log.Debug("directions skipped, origin not resolved")
		return nil
	}

	s.Viewport.FlyTo(dest.Location.Lat, dest.Location.Lng, viewport.RoutePreviewZoom, viewport.DefaultDuration)
	origin := geo.Coordinates{Lat: lat, Lng: lng}
	return s.Routes.RequestRoute(ctx, &origin, dest.Location)
}

// CenterOnUser re-centers the camera on the resolved user location.
func (s *Session) CenterOnUser(zoom float64) bool {
	lat, lng, ok := s.Geoloc.Location().Coordinates()
	if !ok {
		return false
	}
	s.Viewport.FlyTo(lat, lng, zoom, viewport.DefaultDuration)
	return true
}
