// Package viewport owns the map camera. The controller is the only
// writer of viewport state; programmatic fly-to and bounds-fit
// transitions and passive user pan/zoom updates all go through it.
package viewport

import (
	"math"
	"sync"
	"time"

	"fuelmap/pkg/geo"
)

// Zoom levels and animation defaults used by the camera triggers.
const (
	MinZoom = 3
	MaxZoom = 20

	DefaultZoom      = 14
	LocationZoom     = 12
	StationZoom      = 15
	RoutePreviewZoom = 13

	DefaultDuration = 1500 * time.Millisecond
	BoundsPadding   = 50
)

// Viewport is the camera state: center and zoom.
type Viewport struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Zoom      float64 `json:"zoom"`
}

// animation is the single active camera transition. A new trigger
// replaces it; transitions never queue.
type animation struct {
	from     Viewport
	to       Viewport
	duration time.Duration
}

// Controller owns the viewport and a monotonically increasing camera
// generation. The terminal state of every animation equals the
// requested target; intermediate frames are available through At but
// carry no guarantee.
type Controller struct {
	mu   sync.Mutex
	vp   Viewport
	gen  uint64
	anim *animation
}

// New creates a controller at the given initial camera position.
func New(initial Viewport) *Controller {
	initial.Zoom = clampZoom(initial.Zoom)
	return &Controller{vp: initial}
}

// FlyTo animates the camera to the target. Any in-flight animation is
// preempted. The returned generation identifies this transition.
func (c *Controller) FlyTo(lat, lng, zoom float64, duration time.Duration) uint64 {
	target := Viewport{Longitude: lng, Latitude: lat, Zoom: clampZoom(zoom)}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.anim = &animation{from: c.vp, to: target, duration: duration}
	c.vp = target
	c.gen++
	return c.gen
}

// FitBounds animates the camera to frame the given bounds with the
// requested pixel padding, overriding any station-level zoom.
func (c *Controller) FitBounds(b geo.Bounds, padding float64, duration time.Duration) uint64 {
	center := b.Center()
	return c.FlyTo(center.Lat, center.Lng, fitZoom(b, padding), duration)
}

// SetViewport applies a user-driven pan/zoom. The stored viewport is
// overwritten with the latest values and any active animation is
// cancelled without reaching its target.
func (c *Controller) SetViewport(vp Viewport) uint64 {
	vp.Zoom = clampZoom(vp.Zoom)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.anim = nil
	c.vp = vp
	c.gen++
	return c.gen
}

// Viewport returns the current camera state. While an animation is
// active this is its terminal target.
func (c *Controller) Viewport() Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vp
}

// Generation returns the camera generation, incremented by every
// transition and user update.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// Animating reports whether a programmatic transition is in flight.
func (c *Controller) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anim != nil
}

// At returns the camera state elapsed time into the active animation,
// using a deterministic quadratic ease-out. Past the duration, or with
// no active animation, it returns the terminal viewport.
func (c *Controller) At(elapsed time.Duration) Viewport {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.anim == nil || c.anim.duration <= 0 || elapsed >= c.anim.duration {
		return c.vp
	}
	if elapsed < 0 {
		elapsed = 0
	}

	t := easeOutQuad(float64(elapsed) / float64(c.anim.duration))
	return Viewport{
		Longitude: lerp(c.anim.from.Longitude, c.anim.to.Longitude, t),
		Latitude:  lerp(c.anim.from.Latitude, c.anim.to.Latitude, t),
		Zoom:      lerp(c.anim.from.Zoom, c.anim.to.Zoom, t),
	}
}

func easeOutQuad(t float64) float64 {
	return t * (2 - t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampZoom(z float64) float64 {
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}

// fitZoom derives the zoom that frames the bounds on a nominal 512px
// viewport, leaving padding pixels on each side.
func fitZoom(b geo.Bounds, padding float64) float64 {
	span := math.Max(math.Abs(b.MaxLng-b.MinLng), math.Abs(b.MaxLat-b.MinLat))
	if span <= 0 {
		return MaxZoom
	}
	span *= 1 + (2*padding)/512
	return clampZoom(math.Log2(360 / span))
}
