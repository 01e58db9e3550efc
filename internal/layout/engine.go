package layout

import (
	"math"

	"go.uber.org/zap"

	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/geom"
	"github.com/xkilldash9x/lantern/internal/observability"
	"github.com/xkilldash9x/lantern/internal/text"
)

// FaceSource resolves a font face for a size, weight and style. Sizes are in
// device pixels; the engine multiplies logical sizes by the viewport scale
// before lookup and divides metrics back down.
type FaceSource interface {
	Face(size float64, weight dom.FontWeight, style dom.FontStyle) (text.Face, error)
}

// Layout lays the styled document out against the viewport. It returns the
// box tree and the display list; on error no partial display list is
// exposed.
func Layout(doc *dom.Node, vp geom.Viewport, fonts FaceSource) (*Box, *DisplayList, error) {
	if !vp.Valid() {
		return nil, nil, &Error{Reason: "invalid viewport"}
	}
	e := &engine{
		fonts:  fonts,
		scale:  vp.Scale,
		logger: observability.GetLogger().Named("layout"),
	}

	root := &Box{node: doc}
	root.setRect(geom.RectXYWH(vp.Rect.Min.X, vp.Rect.Min.Y, vp.Rect.Width(), 0))
	if err := e.layoutBlock(root, vp.Rect.Width()); err != nil {
		return nil, nil, err
	}
	e.logger.Debug("layout complete",
		zap.Int("paints", len(e.display)),
		zap.Float64("document_height", root.Rect().Height()))
	return root, &DisplayList{Paints: e.display}, nil
}

type engine struct {
	fonts   FaceSource
	scale   float64
	display []Paint
	logger  *zap.Logger
}

// edges are a box's resolved margin, border and padding widths in logical
// units.
type edges struct {
	marginTop, marginRight, marginBottom, marginLeft     float64
	borderTop, borderRight, borderBottom, borderLeft     float64
	paddingTop, paddingRight, paddingBottom, paddingLeft float64
}

func (e edges) horizontal() float64 {
	return e.marginLeft + e.borderLeft + e.paddingLeft +
		e.paddingRight + e.borderRight + e.marginRight
}

// resolveEdges computes a style's edge widths. Percentages resolve against
// the containing block's content width; unresolvable values collapse to 0.
func resolveEdges(st dom.Style, cbWidth float64) edges {
	em := st.FontSize()
	length := func(l dom.Length) float64 {
		v, ok := l.Resolve(cbWidth, em)
		if !ok {
			return 0
		}
		return v
	}
	m := st.Margins()
	p := st.Paddings()
	b := st.Borders()
	return edges{
		marginTop: length(m.Top), marginRight: length(m.Right),
		marginBottom: length(m.Bottom), marginLeft: length(m.Left),
		borderTop: b.Top.BorderWidth(em), borderRight: b.Right.BorderWidth(em),
		borderBottom: b.Bottom.BorderWidth(em), borderLeft: b.Left.BorderWidth(em),
		paddingTop: length(p.Top), paddingRight: length(p.Right),
		paddingBottom: length(p.Bottom), paddingLeft: length(p.Left),
	}
}

// layoutBlock flows box b. On entry b's rect has its top-left and outer
// width fixed by the parent; the bottom is computed here. cbWidth is the
// containing block's content width, the base for percentages.
func (e *engine) layoutBlock(b *Box, cbWidth float64) error {
	st := b.style()
	ed := resolveEdges(st, cbWidth)

	outer := b.Rect()
	contentLeft := outer.Min.X + ed.marginLeft + ed.borderLeft + ed.paddingLeft
	contentTop := outer.Min.Y + ed.marginTop + ed.borderTop + ed.paddingTop
	contentRight := outer.Max.X - ed.marginRight - ed.borderRight - ed.paddingRight
	if contentRight < contentLeft {
		contentRight = contentLeft
	}
	contentWidth := contentRight - contentLeft

	paintIndex := len(e.display)

	if err := e.generate(b); err != nil {
		return err
	}

	contentBottom := contentTop
	switch {
	case len(b.Children()) > 0:
		y := contentTop
		for _, child := range b.Children() {
			outerWidth := contentWidth
			if !child.IsAnonymous() {
				outerWidth = boxWidth(child.style(), contentWidth)
			}
			child.setRect(geom.RectXYWH(contentLeft, y, outerWidth, 0))
			if err := e.layoutBlock(child, contentWidth); err != nil {
				return err
			}
			y = child.Rect().Max.Y
		}
		contentBottom = y
	case len(b.Inlines()) > 0:
		bottom, err := e.inlineFlow(b, contentLeft, contentTop, contentRight, e.alignFor(b))
		if err != nil {
			return err
		}
		contentBottom = bottom
	}

	if n := b.Node(); n != nil && n.Type() == dom.ElementNode {
		if h := st.HeightDim(); !h.Auto {
			if v, ok := h.Length.Resolve(math.NaN(), st.FontSize()); ok && v >= 0 {
				contentBottom = contentTop + v
			}
		}
	}

	outer.Max.Y = contentBottom + ed.paddingBottom + ed.borderBottom + ed.marginBottom
	b.setRect(outer)

	e.emitBoxPaints(b, paintIndex, ed)
	return nil
}

// boxWidth resolves a child's outer width per the CSS box width rule: auto
// fills the available width; a length is the content width and edge extras
// add on top.
func boxWidth(st dom.Style, available float64) float64 {
	w := st.WidthDim()
	if w.Auto {
		return available
	}
	em := st.FontSize()
	v, ok := w.Length.Resolve(available, em)
	if !ok || v < 0 {
		return available
	}
	return v + resolveEdges(st, available).horizontal()
}

// generate performs box generation for b: inline-level children buffer into
// anonymous boxes when block-level siblings exist, otherwise they attach to
// b directly as inlines.
func (e *engine) generate(b *Box) error {
	n := b.Node()
	if n == nil || len(b.Children()) > 0 || len(b.Inlines()) > 0 {
		return nil // anonymous, or already generated
	}

	var eligible []*dom.Node
	for _, c := range n.Children() {
		if !Skippable(c) {
			eligible = append(eligible, c)
		}
	}

	hasBlock := false
	for _, c := range eligible {
		if BlockLevel(c) {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		b.mu.Lock()
		b.inlines = eligible
		b.mu.Unlock()
		return nil
	}

	var buffer []*dom.Node
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		anon := &Box{inlines: buffer}
		b.appendChild(anon)
		buffer = nil
	}
	for _, c := range eligible {
		if BlockLevel(c) {
			flush()
			b.appendChild(&Box{node: c})
			continue
		}
		buffer = append(buffer, c)
	}
	flush()
	return nil
}

// alignFor picks the text alignment governing a box's inline content.
// Anonymous wrappers take it from the enclosing block container.
func (e *engine) alignFor(b *Box) dom.TextAlign {
	if b.IsAnonymous() {
		return b.Parent().style().Align()
	}
	return b.style().Align()
}

// ----------------------------------------------------------------------------
// Inline flow
// ----------------------------------------------------------------------------

type lineItem struct {
	paint      Text
	ascent     float64
	lineHeight float64
}

type lineState struct {
	items        []lineItem
	left, right  float64
	x, y         float64
	pendingSpace float64
}

func (l *lineState) empty() bool { return len(l.items) == 0 }

// inlineFlow lays out b's inline run between contentLeft and contentRight
// starting at contentTop, appending text paints to the display list. It
// returns the content bottom after the last line.
func (e *engine) inlineFlow(b *Box, contentLeft, contentTop, contentRight float64, align dom.TextAlign) (float64, error) {
	line := &lineState{
		left:  contentLeft,
		right: contentRight,
		x:     contentLeft,
		y:     contentTop,
	}

	for _, inline := range b.Inlines() {
		if err := e.flowNode(inline, line, align); err != nil {
			return 0, err
		}
	}
	e.flushLine(line, align)
	return line.y, nil
}

// flowNode walks one inline subtree in document order, flowing every text
// node it contains.
func (e *engine) flowNode(n *dom.Node, line *lineState, align dom.TextAlign) error {
	switch n.Type() {
	case dom.TextNode:
		return e.flowText(n, line, align)
	case dom.ElementNode:
		if n.Style().DisplayMode() == dom.DisplayNone {
			return nil
		}
		for _, c := range n.Children() {
			if err := e.flowNode(c, line, align); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *engine) flowText(n *dom.Node, line *lineState, align dom.TextAlign) error {
	st := n.Style()
	face, err := e.fonts.Face(st.FontSize()*e.scale, st.FontWeight(), st.FontStyle())
	if err != nil {
		return &Error{Reason: "font lookup failed", Err: err}
	}
	metrics := face.Metrics()
	ascent := metrics.Ascent / e.scale
	lineHeight := metrics.Height / e.scale
	if lh := st.LineHeight(); lh != nil {
		lineHeight = *lh * st.FontSize()
	}

	collapsed := text.CollapseWhitespace(n.Value())
	for _, seg := range text.Segments(collapsed) {
		if seg.Space {
			if !line.empty() {
				line.pendingSpace = face.Advance(' ') / e.scale
			}
			continue
		}
		word := []rune(seg.Text)
		for len(word) > 0 {
			advance := e.runAdvance(face, word)
			if line.x+line.pendingSpace+advance <= line.right || line.empty() && line.pendingSpace == 0 {
				if line.x+advance > line.right && line.empty() {
					// Single word wider than the line: split it
					// greedily so something always fits.
					fit := e.fitPrefix(face, word, line.right-line.x)
					e.appendWord(line, st, face, word[:fit], ascent, lineHeight)
					word = word[fit:]
					e.flushLine(line, align)
					continue
				}
				line.x += line.pendingSpace
				line.pendingSpace = 0
				e.appendWord(line, st, face, word, ascent, lineHeight)
				word = nil
				continue
			}
			e.flushLine(line, align)
		}
	}
	return nil
}

func (e *engine) runAdvance(face text.Face, runes []rune) float64 {
	var sum float64
	for _, r := range runes {
		sum += face.Advance(r) / e.scale
	}
	return sum
}

// fitPrefix returns the longest prefix of runes whose advance fits in
// width, at least one rune.
func (e *engine) fitPrefix(face text.Face, runes []rune, width float64) int {
	var sum float64
	for i, r := range runes {
		sum += face.Advance(r) / e.scale
		if sum > width && i > 0 {
			return i
		}
	}
	return len(runes)
}

func (e *engine) appendWord(line *lineState, st dom.Style, face text.Face, runes []rune, ascent, lineHeight float64) {
	advance := e.runAdvance(face, runes)
	paint := Text{
		Rect:    geom.RectXYWH(line.x, line.y, advance, lineHeight),
		Color:   st.TextColor(),
		Content: string(runes),
		Size:    st.FontSize(),
		Weight:  st.FontWeight(),
		Style:   st.FontStyle(),
		Ascent:  ascent,
	}
	line.items = append(line.items, lineItem{paint: paint, ascent: ascent, lineHeight: lineHeight})
	line.x += advance
}

// flushLine finalizes the current line: paints align to the tallest ascent,
// then the whole line translates for text-align, then everything pushes to
// the display list. The cursor drops by the line height and returns to the
// left edge.
func (e *engine) flushLine(line *lineState, align dom.TextAlign) {
	if line.empty() {
		line.pendingSpace = 0
		return
	}

	maxAscent, maxLineHeight := 0.0, 0.0
	lineRight := line.left
	for _, it := range line.items {
		if it.ascent > maxAscent {
			maxAscent = it.ascent
		}
		if it.lineHeight > maxLineHeight {
			maxLineHeight = it.lineHeight
		}
		if r := it.paint.Rect.Max.X; r > lineRight {
			lineRight = r
		}
	}

	var k float64
	switch align {
	case dom.AlignRight:
		k = 1
	case dom.AlignCenter:
		k = 0.5
	}
	dx := (line.right - lineRight) * k

	for _, it := range line.items {
		p := it.paint
		p.Rect = p.Rect.Translate(geom.Pt(dx, maxAscent-it.ascent))
		e.display = append(e.display, p)
	}

	line.items = nil
	line.pendingSpace = 0
	line.x = line.left
	line.y += maxLineHeight
}

// ----------------------------------------------------------------------------
// Paint emission
// ----------------------------------------------------------------------------

// emitBoxPaints inserts the box's background and border fills at index i so
// they draw under anything its content already painted.
func (e *engine) emitBoxPaints(b *Box, i int, ed edges) {
	n := b.Node()
	if n == nil || n.Type() != dom.ElementNode {
		return
	}
	st := n.Style()
	outer := b.Rect()

	borderBox := outer.Inset(ed.marginTop, ed.marginRight, ed.marginBottom, ed.marginLeft)
	paddingBox := borderBox.Inset(ed.borderTop, ed.borderRight, ed.borderBottom, ed.borderLeft)

	var fills []Paint
	if bg := st.Background(); bg.A > 0 {
		fills = append(fills, Fill{Rect: paddingBox, Color: bg})
	}
	borders := st.Borders()
	current := st.TextColor()
	strip := func(r geom.Rect, side dom.Border, width float64) {
		if width <= 0 {
			return
		}
		c := side.BorderColor(current)
		if c.A == 0 {
			return
		}
		fills = append(fills, Fill{Rect: r, Color: c})
	}
	strip(geom.Rect{
		Min: borderBox.Min,
		Max: geom.Pt(borderBox.Max.X, borderBox.Min.Y+ed.borderTop),
	}, borders.Top, ed.borderTop)
	strip(geom.Rect{
		Min: geom.Pt(borderBox.Max.X-ed.borderRight, borderBox.Min.Y),
		Max: borderBox.Max,
	}, borders.Right, ed.borderRight)
	strip(geom.Rect{
		Min: geom.Pt(borderBox.Min.X, borderBox.Max.Y-ed.borderBottom),
		Max: borderBox.Max,
	}, borders.Bottom, ed.borderBottom)
	strip(geom.Rect{
		Min: borderBox.Min,
		Max: geom.Pt(borderBox.Min.X+ed.borderLeft, borderBox.Max.Y),
	}, borders.Left, ed.borderLeft)

	if len(fills) == 0 {
		return
	}
	e.display = append(e.display[:i], append(fills, e.display[i:]...)...)
}
