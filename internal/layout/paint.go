// Package layout turns a styled document tree into a box tree and a flat
// display list. It classifies nodes as block- or inline-level, generates
// boxes with anonymous wrappers around inline runs, performs block flow and
// line breaking against font metrics, and emits paint primitives in back to
// front order.
package layout

import (
	"fmt"

	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/geom"
)

// Paint is one display-list primitive.
type Paint interface {
	Bounds() geom.Rect
}

// Fill paints an axis-aligned rectangle in a solid color.
type Fill struct {
	Rect  geom.Rect
	Color dom.RGBA
}

func (f Fill) Bounds() geom.Rect { return f.Rect }

// Text paints a string at its rectangle's top-left. Size, Weight and Style
// select the face; Ascent is the face's ascent in logical units, kept so the
// rasterizer can place the baseline without a second font lookup.
type Text struct {
	Rect    geom.Rect
	Color   dom.RGBA
	Content string
	Size    float64
	Weight  dom.FontWeight
	Style   dom.FontStyle
	Ascent  float64
}

func (t Text) Bounds() geom.Rect { return t.Rect }

// DisplayList is the ordered paint output of a layout pass. Earlier paints
// draw first (further back).
type DisplayList struct {
	Paints []Paint
}

// Error reports a failure that aborts the layout phase. No partial display
// list survives it.
type Error struct {
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("layout: %s: %v", e.Reason, e.Err)
	}
	return "layout: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }
