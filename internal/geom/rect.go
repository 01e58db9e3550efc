// Package geom provides the small geometry vocabulary shared by the layout
// engine, the pipeline driver and the presentation layer: points, rectangles
// and the viewport against which layout is computed. All values are logical
// points; the viewport carries the device-pixel-per-point scale.
package geom

import "math"

// Point is a position in logical points.
type Point struct {
	X, Y float64
}

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is an axis-aligned rectangle. Min is the top-left corner, Max the
// bottom-right. The zero Rect is empty at the origin; NaN rectangles are used
// as "not yet laid out" markers and propagate through arithmetic.
type Rect struct {
	Min, Max Point
}

// RectMinSize builds a Rect from its top-left corner and a size.
func RectMinSize(min Point, w, h float64) Rect {
	return Rect{Min: min, Max: Point{X: min.X + w, Y: min.Y + h}}
}

// RectXYWH builds a Rect from x, y, width and height.
func RectXYWH(x, y, w, h float64) Rect {
	return RectMinSize(Point{X: x, Y: y}, w, h)
}

// NaNRect returns the marker rectangle for geometry that has not been
// computed yet.
func NaNRect() Rect {
	nan := math.NaN()
	return RectXYWH(nan, nan, nan, nan)
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// IsNaN reports whether any coordinate is NaN.
func (r Rect) IsNaN() bool {
	return math.IsNaN(r.Min.X) || math.IsNaN(r.Min.Y) ||
		math.IsNaN(r.Max.X) || math.IsNaN(r.Max.Y)
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Min: r.Min.Add(d), Max: r.Max.Add(d)}
}

// Intersects reports whether r and q overlap.
func (r Rect) Intersects(q Rect) bool {
	return r.Min.X < q.Max.X && q.Min.X < r.Max.X &&
		r.Min.Y < q.Max.Y && q.Min.Y < r.Max.Y
}

// ContainsRect reports whether q lies entirely within r.
func (r Rect) ContainsRect(q Rect) bool {
	return r.Min.X <= q.Min.X && r.Min.Y <= q.Min.Y &&
		q.Max.X <= r.Max.X && q.Max.Y <= r.Max.Y
}

// Inset returns r shrunk by the given amounts on each side. Negative values
// grow the rectangle.
func (r Rect) Inset(top, right, bottom, left float64) Rect {
	return Rect{
		Min: Point{X: r.Min.X + left, Y: r.Min.Y + top},
		Max: Point{X: r.Max.X - right, Y: r.Max.Y - bottom},
	}
}
