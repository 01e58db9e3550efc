package geom

import "math"

// Viewport is the rectangle of logical points a document is laid out against,
// together with the device-pixel-per-point ratio of the surface it will be
// painted on. The zero Viewport is invalid; the presentation layer populates
// it once the window geometry is known.
type Viewport struct {
	Rect  Rect
	Scale float64
}

// NewViewport builds a viewport from a rectangle and scale.
func NewViewport(rect Rect, scale float64) Viewport {
	return Viewport{Rect: rect, Scale: scale}
}

// Valid reports whether the viewport carries usable geometry. A viewport is
// valid iff no coordinate is NaN; the renderer refuses requests against
// invalid viewports.
func (v Viewport) Valid() bool {
	return !v.Rect.IsNaN() && !math.IsNaN(v.Scale) && v.Scale > 0
}

// InvalidViewport returns the "geometry unknown" marker.
func InvalidViewport() Viewport {
	return Viewport{Rect: NaNRect(), Scale: math.NaN()}
}
