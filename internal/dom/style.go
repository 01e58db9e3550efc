package dom

import (
	"fmt"
	"math"
	"strings"
)

// ----------------------------------------------------------------------------
// Lengths
// ----------------------------------------------------------------------------

// LengthUnit enumerates the length units the engine understands.
type LengthUnit int

const (
	// UnitZero is the unitless literal 0.
	UnitZero LengthUnit = iota
	// UnitPercent resolves against a context-dependent base.
	UnitPercent
	// UnitPx is absolute pixels.
	UnitPx
	// UnitEm resolves against the element's font size.
	UnitEm
)

// Length is a CSS length value.
type Length struct {
	Unit  LengthUnit
	Value float64
}

// Zero is the unitless 0 length.
func Zero() Length { return Length{Unit: UnitZero} }

// Px builds an absolute pixel length.
func Px(v float64) Length { return Length{Unit: UnitPx, Value: v} }

// Percent builds a percentage length.
func Percent(v float64) Length { return Length{Unit: UnitPercent, Value: v} }

// Em builds a font-size-relative length.
func Em(v float64) Length { return Length{Unit: UnitEm, Value: v} }

// Resolve converts the length to pixels. percentBase is the surrounding
// dimension a percentage refers to and may be NaN when that dimension is not
// yet known, in which case resolving a percentage reports false. emBase is
// the element's font size in pixels.
func (l Length) Resolve(percentBase, emBase float64) (float64, bool) {
	switch l.Unit {
	case UnitZero:
		return 0, true
	case UnitPercent:
		if math.IsNaN(percentBase) {
			return 0, false
		}
		return l.Value / 100 * percentBase, true
	case UnitPx:
		return l.Value, true
	case UnitEm:
		return l.Value * emBase, true
	}
	return 0, false
}

func (l Length) String() string {
	switch l.Unit {
	case UnitZero:
		return "0"
	case UnitPercent:
		return fmt.Sprintf("%g%%", l.Value)
	case UnitPx:
		return fmt.Sprintf("%gpx", l.Value)
	case UnitEm:
		return fmt.Sprintf("%gem", l.Value)
	}
	return "?"
}

// ----------------------------------------------------------------------------
// Colors
// ----------------------------------------------------------------------------

// RGBA is a resolved sRGB color with straight alpha.
type RGBA struct {
	R, G, B, A uint8
}

// Common resolved colors.
var (
	Black       = RGBA{A: 255}
	White       = RGBA{R: 255, G: 255, B: 255, A: 255}
	Transparent = RGBA{}
)

// Color is a CSS color value: either a concrete RGBA or the currentcolor
// keyword, which resolves against the element's text color late.
type Color struct {
	Current bool
	RGBA    RGBA
}

// ColorOf wraps a resolved RGBA.
func ColorOf(c RGBA) Color { return Color{RGBA: c} }

// CurrentColor is the unresolved currentcolor keyword.
func CurrentColor() Color { return Color{Current: true} }

// Resolve substitutes current for the currentcolor keyword.
func (c Color) Resolve(current RGBA) RGBA {
	if c.Current {
		return current
	}
	return c.RGBA
}

func (c Color) String() string {
	if c.Current {
		return "currentcolor"
	}
	v := c.RGBA
	if v.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", v.R, v.G, v.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", v.R, v.G, v.B, v.A)
}

// ----------------------------------------------------------------------------
// Quads
// ----------------------------------------------------------------------------

// Quad holds one optional value per box side. Unset sides fall back to the
// initial style on read.
type Quad[T any] struct {
	Top, Right, Bottom, Left *T
}

// QuadAll sets the same value on all four sides.
func QuadAll[T any](v T) Quad[T] {
	return Quad[T]{Top: &v, Right: &v, Bottom: &v, Left: &v}
}

// QuadOf assembles a quad from 1 to 4 values using the CSS shorthand rules:
// one value applies to all sides, two to vertical/horizontal, three to
// top/horizontal/bottom, four to top/right/bottom/left.
func QuadOf[T any](vs ...T) (Quad[T], bool) {
	switch len(vs) {
	case 1:
		return QuadAll(vs[0]), true
	case 2:
		return Quad[T]{Top: &vs[0], Bottom: &vs[0], Right: &vs[1], Left: &vs[1]}, true
	case 3:
		return Quad[T]{Top: &vs[0], Right: &vs[1], Left: &vs[1], Bottom: &vs[2]}, true
	case 4:
		return Quad[T]{Top: &vs[0], Right: &vs[1], Bottom: &vs[2], Left: &vs[3]}, true
	}
	return Quad[T]{}, false
}

// Merge overlays other's set sides onto q.
func (q Quad[T]) Merge(other Quad[T]) Quad[T] {
	if other.Top != nil {
		q.Top = other.Top
	}
	if other.Right != nil {
		q.Right = other.Right
	}
	if other.Bottom != nil {
		q.Bottom = other.Bottom
	}
	if other.Left != nil {
		q.Left = other.Left
	}
	return q
}

// Resolved returns the quad with unset sides replaced by fallback.
func (q Quad[T]) Resolved(fallback T) ResolvedQuad[T] {
	pick := func(p *T) T {
		if p != nil {
			return *p
		}
		return fallback
	}
	return ResolvedQuad[T]{
		Top:    pick(q.Top),
		Right:  pick(q.Right),
		Bottom: pick(q.Bottom),
		Left:   pick(q.Left),
	}
}

// ResolvedQuad is a Quad with every side present.
type ResolvedQuad[T any] struct {
	Top, Right, Bottom, Left T
}

// ----------------------------------------------------------------------------
// Borders and fonts
// ----------------------------------------------------------------------------

// Border describes one border side. Either field may be unset.
type Border struct {
	Width *Length
	Color *Color
}

// BorderOf builds a fully specified border side.
func BorderOf(w Length, c Color) Border {
	return Border{Width: &w, Color: &c}
}

func (b Border) merge(other Border) Border {
	if other.Width != nil {
		b.Width = other.Width
	}
	if other.Color != nil {
		b.Color = other.Color
	}
	return b
}

// FontWeight selects between the two weights the engine renders.
type FontWeight int

const (
	WeightNormal FontWeight = iota
	WeightBold
)

func (w FontWeight) String() string {
	if w == WeightBold {
		return "bold"
	}
	return "normal"
}

// FontStyle selects between upright and italic faces.
type FontStyle int

const (
	StyleNormal FontStyle = iota
	StyleItalic
)

func (s FontStyle) String() string {
	if s == StyleItalic {
		return "italic"
	}
	return "normal"
}

// Font groups the font-related properties. Size is absolute pixels; the
// cascade resolves relative sizes against the parent before storing it.
// LineHeight is a multiplier of the font size; nil means use the face's
// natural line height.
type Font struct {
	Size       *float64
	Weight     *FontWeight
	Style      *FontStyle
	Family     []string
	LineHeight *float64
}

func (f *Font) clone() *Font {
	if f == nil {
		return nil
	}
	c := *f
	c.Family = append([]string(nil), f.Family...)
	return &c
}

func (f *Font) merge(other *Font) *Font {
	if other == nil {
		return f
	}
	if f == nil {
		return other.clone()
	}
	c := f.clone()
	if other.Size != nil {
		c.Size = other.Size
	}
	if other.Weight != nil {
		c.Weight = other.Weight
	}
	if other.Style != nil {
		c.Style = other.Style
	}
	if len(other.Family) > 0 {
		c.Family = append([]string(nil), other.Family...)
	}
	if other.LineHeight != nil {
		c.LineHeight = other.LineHeight
	}
	return c
}

// ----------------------------------------------------------------------------
// Display, dimensions, alignment
// ----------------------------------------------------------------------------

// Display enumerates the display modes layout distinguishes.
type Display int

const (
	DisplayInline Display = iota
	DisplayBlock
	DisplayInlineBlock
	DisplayListItem
	DisplayNone
)

// ParseDisplay maps a display keyword to a mode. Unknown keywords render
// inline rather than failing the cascade.
func ParseDisplay(s string) Display {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "block":
		return DisplayBlock
	case "inline-block":
		return DisplayInlineBlock
	case "list-item":
		return DisplayListItem
	case "none":
		return DisplayNone
	default:
		return DisplayInline
	}
}

func (d Display) String() string {
	switch d {
	case DisplayBlock:
		return "block"
	case DisplayInlineBlock:
		return "inline-block"
	case DisplayListItem:
		return "list-item"
	case DisplayNone:
		return "none"
	}
	return "inline"
}

// Dimension is a width or height: either the auto keyword or a length.
type Dimension struct {
	Auto   bool
	Length Length
}

// AutoDim is the auto keyword.
func AutoDim() Dimension { return Dimension{Auto: true} }

// DimOf wraps a length dimension.
func DimOf(l Length) Dimension { return Dimension{Length: l} }

func (d Dimension) String() string {
	if d.Auto {
		return "auto"
	}
	return d.Length.String()
}

// TextAlign enumerates horizontal line alignment.
type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

func (a TextAlign) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return "left"
}

// ----------------------------------------------------------------------------
// Style
// ----------------------------------------------------------------------------

// DefaultFontSize is the root font size in pixels.
const DefaultFontSize = 16.0

// Style is the computed style of an element or text node. Every field is
// optional; reads fall back to the initial style. Styles are small value
// types copied freely between the cascade and layout.
type Style struct {
	Display         *Display
	Margin          Quad[Length]
	Padding         Quad[Length]
	Border          Quad[Border]
	Font            *Font
	Width           *Dimension
	Height          *Dimension
	BackgroundColor *Color
	Color           *Color
	TextAlign       *TextAlign
}

// InitialStyle is the style every property falls back to: inline display,
// zero edges, 16px upright normal-weight serif text in black on a
// transparent background, auto dimensions, left alignment.
func InitialStyle() Style {
	d := DisplayInline
	size := DefaultFontSize
	w := WeightNormal
	fs := StyleNormal
	width := AutoDim()
	height := AutoDim()
	bg := ColorOf(Transparent)
	fg := ColorOf(Black)
	align := AlignLeft
	return Style{
		Display: &d,
		Margin:  QuadAll(Zero()),
		Padding: QuadAll(Zero()),
		Border:  QuadAll(BorderOf(Zero(), CurrentColor())),
		Font: &Font{
			Size:   &size,
			Weight: &w,
			Style:  &fs,
			Family: []string{"serif"},
		},
		Width:           &width,
		Height:          &height,
		BackgroundColor: &bg,
		Color:           &fg,
		TextAlign:       &align,
	}
}

// NewInherited builds a child style carrying the inherited properties (font
// and text color) from s. Everything else is left unset and reads as the
// initial value.
func (s Style) NewInherited() Style {
	return Style{
		Font:  s.Font.clone(),
		Color: s.Color,
	}
}

// Apply overlays other's set fields onto s and returns the result. Quads
// merge per side and fonts per subfield.
func (s Style) Apply(other Style) Style {
	if other.Display != nil {
		s.Display = other.Display
	}
	s.Margin = s.Margin.Merge(other.Margin)
	s.Padding = s.Padding.Merge(other.Padding)
	s.Border = mergeBorderQuad(s.Border, other.Border)
	s.Font = s.Font.merge(other.Font)
	if other.Width != nil {
		s.Width = other.Width
	}
	if other.Height != nil {
		s.Height = other.Height
	}
	if other.BackgroundColor != nil {
		s.BackgroundColor = other.BackgroundColor
	}
	if other.Color != nil {
		s.Color = other.Color
	}
	if other.TextAlign != nil {
		s.TextAlign = other.TextAlign
	}
	return s
}

// Border sides merge field-wise so border-color does not clobber a width set
// by an earlier rule.
func mergeBorderQuad(base, other Quad[Border]) Quad[Border] {
	mergeSide := func(b, o *Border) *Border {
		if o == nil {
			return b
		}
		if b == nil {
			c := *o
			return &c
		}
		m := b.merge(*o)
		return &m
	}
	base.Top = mergeSide(base.Top, other.Top)
	base.Right = mergeSide(base.Right, other.Right)
	base.Bottom = mergeSide(base.Bottom, other.Bottom)
	base.Left = mergeSide(base.Left, other.Left)
	return base
}

// DisplayMode returns the effective display mode.
func (s Style) DisplayMode() Display {
	if s.Display != nil {
		return *s.Display
	}
	return DisplayInline
}

// FontSize returns the effective font size in pixels.
func (s Style) FontSize() float64 {
	if s.Font != nil && s.Font.Size != nil {
		return *s.Font.Size
	}
	return DefaultFontSize
}

// FontWeight returns the effective weight.
func (s Style) FontWeight() FontWeight {
	if s.Font != nil && s.Font.Weight != nil {
		return *s.Font.Weight
	}
	return WeightNormal
}

// FontStyle returns the effective slant.
func (s Style) FontStyle() FontStyle {
	if s.Font != nil && s.Font.Style != nil {
		return *s.Font.Style
	}
	return StyleNormal
}

// FontFamily returns the effective family list.
func (s Style) FontFamily() []string {
	if s.Font != nil && len(s.Font.Family) > 0 {
		return s.Font.Family
	}
	return []string{"serif"}
}

// LineHeight returns the line-height multiplier, or nil when the font face's
// natural height should be used.
func (s Style) LineHeight() *float64 {
	if s.Font != nil {
		return s.Font.LineHeight
	}
	return nil
}

// TextColor returns the effective foreground color. The cascade resolves
// currentcolor for the color property itself, so this is always concrete.
func (s Style) TextColor() RGBA {
	if s.Color != nil {
		return s.Color.Resolve(Black)
	}
	return Black
}

// Background returns the effective background color, resolving currentcolor
// against the element's own text color.
func (s Style) Background() RGBA {
	if s.BackgroundColor != nil {
		return s.BackgroundColor.Resolve(s.TextColor())
	}
	return Transparent
}

// WidthDim returns the effective width.
func (s Style) WidthDim() Dimension {
	if s.Width != nil {
		return *s.Width
	}
	return AutoDim()
}

// HeightDim returns the effective height.
func (s Style) HeightDim() Dimension {
	if s.Height != nil {
		return *s.Height
	}
	return AutoDim()
}

// Align returns the effective text alignment.
func (s Style) Align() TextAlign {
	if s.TextAlign != nil {
		return *s.TextAlign
	}
	return AlignLeft
}

// Margins returns the margin quad with unset sides zeroed.
func (s Style) Margins() ResolvedQuad[Length] {
	return s.Margin.Resolved(Zero())
}

// Paddings returns the padding quad with unset sides zeroed.
func (s Style) Paddings() ResolvedQuad[Length] {
	return s.Padding.Resolved(Zero())
}

// Borders returns the border quad with unset sides defaulting to a zero
// width currentcolor border.
func (s Style) Borders() ResolvedQuad[Border] {
	return s.Border.Resolved(BorderOf(Zero(), CurrentColor()))
}

// BorderWidth resolves one border side's width to pixels.
func (b Border) BorderWidth(emBase float64) float64 {
	if b.Width == nil {
		return 0
	}
	// Percentage border widths are not meaningful here.
	v, ok := b.Width.Resolve(math.NaN(), emBase)
	if !ok {
		return 0
	}
	return v
}

// BorderColor resolves one border side's color against the text color.
func (b Border) BorderColor(current RGBA) RGBA {
	if b.Color == nil {
		return current
	}
	return b.Color.Resolve(current)
}
