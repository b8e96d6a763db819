package viewport

import (
	"math"
	"testing"
	"time"

	"fuelmap/pkg/geo"
)

func nairobi() Viewport {
	return Viewport{Longitude: 36.81667, Latitude: -1.28333, Zoom: DefaultZoom}
}

func TestFlyToTerminalState(t *testing.T) {
	c := New(nairobi())

	c.FlyTo(-1.29, 36.79, StationZoom, DefaultDuration)

	vp := c.Viewport()
	if vp.Latitude != -1.29 || vp.Longitude != 36.79 || vp.Zoom != StationZoom {
		t.Errorf("Terminal state must match the requested target, got %+v", vp)
	}
	if !c.Animating() {
		t.Error("FlyTo should leave an animation in flight")
	}
}

func TestGenerationMonotonic(t *testing.T) {
	c := New(nairobi())

	g1 := c.FlyTo(-1.29, 36.79, StationZoom, DefaultDuration)
	g2 := c.FlyTo(-1.30, 36.78, StationZoom, DefaultDuration)
	g3 := c.SetViewport(Viewport{Longitude: 36.7, Latitude: -1.3, Zoom: 10})

	if !(g1 < g2 && g2 < g3) {
		t.Errorf("Camera generation must increase: %d, %d, %d", g1, g2, g3)
	}
}

func TestPreemption(t *testing.T) {
	c := New(nairobi())

	c.FlyTo(-1.29, 36.79, StationZoom, DefaultDuration)
	c.FlyTo(-1.10, 36.60, LocationZoom, DefaultDuration)

	// The newer trigger replaces the older; no queueing.
	vp := c.Viewport()
	if vp.Latitude != -1.10 || vp.Zoom != LocationZoom {
		t.Errorf("New trigger must preempt, got %+v", vp)
	}
}

func TestSetViewportCancelsAnimation(t *testing.T) {
	c := New(nairobi())
	c.FlyTo(-1.29, 36.79, StationZoom, DefaultDuration)

	user := Viewport{Longitude: 36.75, Latitude: -1.25, Zoom: 13}
	c.SetViewport(user)

	if c.Animating() {
		t.Error("User pan/zoom must cancel the active animation")
	}
	if got := c.Viewport(); got != user {
		t.Errorf("User viewport must be stored as-is, got %+v", got)
	}
}

func TestAtEasing(t *testing.T) {
	c := New(Viewport{Longitude: 0, Latitude: 0, Zoom: 10})
	c.FlyTo(10, 10, 10, 1000*time.Millisecond)

	// Quadratic ease-out at t=0.5 is 0.75 of the way there.
	mid := c.At(500 * time.Millisecond)
	if math.Abs(mid.Latitude-7.5) > 1e-9 || math.Abs(mid.Longitude-7.5) > 1e-9 {
		t.Errorf("Unexpected midpoint: %+v", mid)
	}

	end := c.At(1000 * time.Millisecond)
	if end.Latitude != 10 || end.Longitude != 10 {
		t.Errorf("Past the duration At must return the target, got %+v", end)
	}
}

func TestZoomClamped(t *testing.T) {
	c := New(nairobi())

	c.FlyTo(0, 0, 25, DefaultDuration)
	if got := c.Viewport().Zoom; got != MaxZoom {
		t.Errorf("Zoom must clamp to %d, got %f", MaxZoom, got)
	}

	c.SetViewport(Viewport{Zoom: 1})
	if got := c.Viewport().Zoom; got != MinZoom {
		t.Errorf("Zoom must clamp to %d, got %f", MinZoom, got)
	}
}

func TestFitBounds(t *testing.T) {
	c := New(nairobi())
	b := geo.Bounds{MinLng: 36.80, MinLat: -1.30, MaxLng: 36.90, MaxLat: -1.20}

	c.FitBounds(b, BoundsPadding, DefaultDuration)

	vp := c.Viewport()
	center := b.Center()
	if math.Abs(vp.Latitude-center.Lat) > 1e-9 || math.Abs(vp.Longitude-center.Lng) > 1e-9 {
		t.Errorf("FitBounds must center on the box, got %+v", vp)
	}
	if vp.Zoom < MinZoom || vp.Zoom > MaxZoom {
		t.Errorf("Fit zoom out of range: %f", vp.Zoom)
	}

	// A tighter box zooms in further.
	tight := geo.Bounds{MinLng: 36.820, MinLat: -1.282, MaxLng: 36.825, MaxLat: -1.280}
	c.FitBounds(tight, BoundsPadding, DefaultDuration)
	if c.Viewport().Zoom <= vp.Zoom {
		t.Errorf("Tighter bounds should produce a higher zoom: %f <= %f", c.Viewport().Zoom, vp.Zoom)
	}
}
