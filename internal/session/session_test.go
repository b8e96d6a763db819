package session

import (
	"context"
	"log/slog"
	"testing"

	"fuelmap/internal/directory"
	"fuelmap/internal/viewport"
	"fuelmap/pkg/directions"
	"fuelmap/pkg/geo"
	"fuelmap/pkg/geoip"
	"fuelmap/pkg/stations"
)

type fakeLookup struct {
	result *geoip.Result
	err    error
}

func (f *fakeLookup) Lookup(ctx context.Context) (*geoip.Result, error) {
	return f.result, f.err
}

type fakeFetcher struct {
	configured bool
	list       []stations.Station
	err        error
}

func (f *fakeFetcher) Configured() bool { return f.configured }

func (f *fakeFetcher) FetchStations(ctx context.Context) ([]stations.Station, error) {
	return f.list, f.err
}

type fakeDirections struct {
	routes []directions.Route
	err    error
	calls  int
}

func (f *fakeDirections) Routes(ctx context.Context, origin, dest geo.Coordinates) ([]directions.Route, error) {
	f.calls++
	return f.routes, f.err
}

func testOptions() Options {
	return Options{
		DefaultCountry:   "Kenya",
		DefaultLatitude:  -1.28333,
		DefaultLongitude: 36.81667,
	}
}

func resolvedLookup() *fakeLookup {
	lat, lng := -1.2921, 36.8219
	return &fakeLookup{result: &geoip.Result{
		CountryName: "Kenya", Latitude: &lat, Longitude: &lng, Currency: "KES",
	}}
}

func testStations() []stations.Station {
	return []stations.Station{
		{ID: 1, Name: "Shell Westlands", Location: geo.Coordinates{Lat: -1.28, Lng: 36.82},
			FuelPrices: []stations.FuelPrice{{Type: "petrol", Price: 150}}},
		{ID: 2, Name: "Total Kilimani", Location: geo.Coordinates{Lat: -1.31, Lng: 36.78}},
	}
}

func newTestSession(lookup *fakeLookup, dirs *fakeDirections) *Session {
	fetcher := &fakeFetcher{configured: true, list: testStations()}
	return New(testOptions(), lookup, fetcher, dirs, slog.New(slog.DiscardHandler))
}

func TestPermissionDeniedKeepsFallbackCenter(t *testing.T) {
	s := newTestSession(resolvedLookup(), &fakeDirections{})

	s.Start(context.Background(), false)

	loc := s.Geoloc.Location()
	if loc.CountryName != "Kenya" || loc.Resolved() {
		t.Errorf("Denial must publish the deterministic default, got %+v", loc)
	}

	vp := s.Viewport.Viewport()
	if vp.Latitude != -1.28333 || vp.Longitude != 36.81667 || vp.Zoom != viewport.DefaultZoom {
		t.Errorf("Camera must stay on the static fallback center, got %+v", vp)
	}
}

func TestResolvedLocationCentersOnce(t *testing.T) {
	s := newTestSession(resolvedLookup(), &fakeDirections{})

	s.Start(context.Background(), true)

	vp := s.Viewport.Viewport()
	if vp.Latitude != -1.2921 || vp.Longitude != 36.8219 {
		t.Errorf("Camera must fly to the resolved location, got %+v", vp)
	}
	if vp.Zoom != viewport.LocationZoom {
		t.Errorf("First location centering uses zoom %d, got %f", viewport.LocationZoom, vp.Zoom)
	}
}

func TestSelectionFliesToStation(t *testing.T) {
	s := newTestSession(resolvedLookup(), &fakeDirections{})
	s.Start(context.Background(), true)

	if !s.SelectStation(1) {
		t.Fatal("SelectStation(1) should succeed")
	}

	vp := s.Viewport.Viewport()
	if vp.Latitude != -1.28 || vp.Longitude != 36.82 {
		t.Errorf("Camera must fly to the selected station, got %+v", vp)
	}
	if vp.Zoom != viewport.StationZoom {
		t.Errorf("Station focus uses zoom %d, got %f", viewport.StationZoom, vp.Zoom)
	}

	if s.SelectStation(99) {
		t.Error("Unknown station ID must be rejected")
	}
}

func TestReselectRecentersCamera(t *testing.T) {
	s := newTestSession(resolvedLookup(), &fakeDirections{})
	s.Start(context.Background(), true)

	s.SelectStation(1)
	genBefore := s.Viewport.Generation()
	s.SelectStation(1)

	if id, _ := s.Selection.SelectedID(); id != 1 {
		t.Errorf("Re-select must keep the selection, got %d", id)
	}
	if s.Viewport.Generation() <= genBefore {
		t.Error("Re-selecting the same station must still re-center the camera")
	}
}

func TestDirectionsWithoutSelection(t *testing.T) {
	dirs := &fakeDirections{}
	s := newTestSession(resolvedLookup(), dirs)
	s.Start(context.Background(), true)

	if err := s.GetDirections(context.Background()); err != nil {
		t.Fatalf("GetDirections() failed: %v", err)
	}
	if dirs.calls != 0 {
		t.Errorf("No selection must mean no remote call, got %d", dirs.calls)
	}
}

func TestDirectionsWithUnresolvedOrigin(t *testing.T) {
	dirs := &fakeDirections{}
	s := newTestSession(resolvedLookup(), dirs)
	s.Start(context.Background(), false) // denial: no coordinates
	s.SelectStation(1)

	genBefore := s.Viewport.Generation()
	if err := s.GetDirections(context.Background()); err != nil {
		t.Fatalf("GetDirections() failed: %v", err)
	}

	if dirs.calls != 0 {
		t.Errorf("Unresolved origin must mean no remote call, got %d", dirs.calls)
	}
	if s.Routes.Route() != nil {
		t.Error("Unresolved origin must not change the overlay")
	}
	if s.Viewport.Generation() != genBefore {
		t.Error("Unresolved origin must not move the camera")
	}
}

func TestDirectionsFlow(t *testing.T) {
	bounds := geo.Bounds{MinLng: 36.80, MinLat: -1.30, MaxLng: 36.83, MaxLat: -1.28}
	dirs := &fakeDirections{routes: []directions.Route{{
		Geometry: directions.Geometry{Type: "LineString",
			Coordinates: [][]float64{{36.8219, -1.2921}, {36.82, -1.28}}},
		Bounds: &bounds,
	}}}
	s := newTestSession(resolvedLookup(), dirs)
	s.Start(context.Background(), true)
	s.SelectStation(1)

	if err := s.GetDirections(context.Background()); err != nil {
		t.Fatalf("GetDirections() failed: %v", err)
	}

	if s.Routes.Route() == nil {
		t.Fatal("Expected a route overlay")
	}

	// The bounds fit is the final camera target, overriding the
	// destination pre-zoom.
	vp := s.Viewport.Viewport()
	center := bounds.Center()
	if vp.Latitude != center.Lat || vp.Longitude != center.Lng {
		t.Errorf("Camera must frame the route bounds, got %+v", vp)
	}
}

func TestDirectionsEmptyRoutes(t *testing.T) {
	dirs := &fakeDirections{}
	s := newTestSession(resolvedLookup(), dirs)
	s.Start(context.Background(), true)
	s.SelectStation(1)

	if err := s.GetDirections(context.Background()); err != nil {
		t.Fatalf("GetDirections() failed: %v", err)
	}

	if dirs.calls != 1 {
		t.Errorf("Expected one remote call, got %d", dirs.calls)
	}
	if s.Routes.Route() != nil {
		t.Error("Empty route list must leave the overlay nil")
	}
}

func TestClearSelectionKeepsRoute(t *testing.T) {
	bounds := geo.Bounds{MinLng: 36.80, MinLat: -1.30, MaxLng: 36.83, MaxLat: -1.28}
	dirs := &fakeDirections{routes: []directions.Route{{
		Geometry: directions.Geometry{Type: "LineString",
			Coordinates: [][]float64{{36.8219, -1.2921}, {36.82, -1.28}}},
		Bounds: &bounds,
	}}}
	s := newTestSession(resolvedLookup(), dirs)
	s.Start(context.Background(), true)
	s.SelectStation(1)
	s.GetDirections(context.Background())

	s.ClearSelection()

	if s.Selection.Selected() != nil {
		t.Error("Selection must be cleared")
	}
	if s.Routes.Route() == nil {
		t.Error("Clearing the selection keeps the route overlay")
	}
}

func TestDirectoryErrorSurfaced(t *testing.T) {
	fetcher := &fakeFetcher{configured: true, err: context.DeadlineExceeded}
	s := New(testOptions(), resolvedLookup(), fetcher, &fakeDirections{}, slog.New(slog.DiscardHandler))

	s.Start(context.Background(), true)

	if s.Directory.State() != directory.StateFailed {
		t.Errorf("Expected failed directory, got %s", s.Directory.State())
	}
	if s.Directory.Err() == "" {
		t.Error("Directory error message must be set")
	}
}

func TestCenterOnUser(t *testing.T) {
	s := newTestSession(resolvedLookup(), &fakeDirections{})
	s.Start(context.Background(), true)
	s.SelectStation(2)

	if !s.CenterOnUser(viewport.DefaultZoom) {
		t.Fatal("CenterOnUser should succeed with a resolved location")
	}
	vp := s.Viewport.Viewport()
	if vp.Latitude != -1.2921 || vp.Longitude != 36.8219 {
		t.Errorf("Camera must re-center on the user, got %+v", vp)
	}

	denied := newTestSession(resolvedLookup(), &fakeDirections{})
	denied.Start(context.Background(), false)
	if denied.CenterOnUser(viewport.DefaultZoom) {
		t.Error("CenterOnUser must fail without resolved coordinates")
	}
}
