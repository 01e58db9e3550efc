package style

import (
	_ "embed"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/lantern/internal/css"
	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/observability"
)

// ua.css carries the built-in element defaults (block display for structural
// elements, hidden head content, heading sizes). Author sheets cascade after
// it and win.
//
//go:embed assets/ua.css
var uaCSS string

var uaSheet = css.ParseStylesheet(uaCSS)

// Resolve computes and stores a style on every element and text node under
// doc. sheets are the author stylesheets in document order; the user agent
// sheet is always consulted first. Later declarations win outright: the
// cascade is pure source order, without specificity.
func Resolve(doc *dom.Node, sheets []css.Stylesheet) {
	all := make([]css.Stylesheet, 0, len(sheets)+1)
	all = append(all, uaSheet)
	all = append(all, sheets...)
	r := &resolver{
		sheets: all,
		logger: observability.GetLogger().Named("style"),
	}
	for _, child := range doc.Children() {
		r.walk(child, dom.InitialStyle())
	}
}

type resolver struct {
	sheets []css.Stylesheet
	logger *zap.Logger
}

func (r *resolver) walk(n *dom.Node, parent dom.Style) {
	switch n.Type() {
	case dom.TextNode:
		n.SetStyle(parent.NewInherited())
		return
	case dom.ElementNode:
		// fall through
	default:
		return
	}

	st := r.resolveElement(n, parent)
	n.SetStyle(st)
	for _, child := range n.Children() {
		r.walk(child, st)
	}
}

// resolveElement runs the two cascade passes. The first pass applies only
// font-size and color so that the element's own font size and currentcolor
// are fixed before any other property reads them; the second applies
// everything else.
func (r *resolver) resolveElement(el *dom.Node, parent dom.Style) dom.Style {
	st := parent.NewInherited()

	r.eachMatchedDeclaration(el, func(d css.Declaration) {
		r.applyEarly(&st, parent, d)
	})
	r.eachMatchedDeclaration(el, func(d css.Declaration) {
		r.applyLate(&st, parent, d)
	})
	return st
}

// eachMatchedDeclaration visits every declaration that applies to el, in
// cascade order: sheet rules in source order, then the inline style
// attribute.
func (r *resolver) eachMatchedDeclaration(el *dom.Node, fn func(css.Declaration)) {
	for _, sheet := range r.sheets {
		for _, rule := range sheet.Rules {
			if !anySelectorMatches(el, rule.Selectors) {
				continue
			}
			for _, d := range rule.Declarations {
				fn(d)
			}
		}
	}
	if inline, ok := el.Attr("style"); ok {
		for _, d := range parseInline(inline) {
			fn(d)
		}
	}
}

func anySelectorMatches(el *dom.Node, sels []css.ComplexSelector) bool {
	for _, sel := range sels {
		if Matches(el, sel) {
			return true
		}
	}
	return false
}

// parseInline parses a style attribute as a bare declaration list.
func parseInline(s string) []css.Declaration {
	sheet := css.ParseStylesheet("*{" + s + "}")
	if len(sheet.Rules) == 0 {
		return nil
	}
	return sheet.Rules[0].Declarations
}

func (r *resolver) applyEarly(st *dom.Style, parent dom.Style, d css.Declaration) {
	switch d.Property {
	case "font-size":
		l, ok := css.ParseLength(d.Value)
		if !ok {
			r.dropValue(d)
			return
		}
		// Both percentages and ems scale the parent font size.
		size, ok := l.Resolve(parent.FontSize(), parent.FontSize())
		if !ok || size < 0 {
			r.dropValue(d)
			return
		}
		setFontSize(st, size)
	case "color":
		c, ok := css.ParseColor(d.Value)
		if !ok {
			r.dropValue(d)
			return
		}
		// currentcolor on the color property means the parent's color.
		resolved := dom.ColorOf(c.Resolve(parent.TextColor()))
		st.Color = &resolved
	}
}

//nolint:gocyclo // one case per supported property
func (r *resolver) applyLate(st *dom.Style, parent dom.Style, d css.Declaration) {
	switch d.Property {
	case "font-size", "color":
		// handled by the early pass

	case "display":
		mode := dom.ParseDisplay(d.Value)
		st.Display = &mode

	case "margin":
		if q, ok := css.ParseQuad(d.Value); ok {
			st.Margin = st.Margin.Merge(q)
		} else {
			r.dropValue(d)
		}
	case "margin-top", "margin-right", "margin-bottom", "margin-left":
		r.applySide(&st.Margin, d)

	case "padding":
		if q, ok := css.ParseQuad(d.Value); ok {
			st.Padding = st.Padding.Merge(q)
		} else {
			r.dropValue(d)
		}
	case "padding-top", "padding-right", "padding-bottom", "padding-left":
		r.applySide(&st.Padding, d)

	case "border":
		if b, ok := css.ParseBorder(d.Value); ok {
			st.Border = dom.QuadAll(b)
		} else {
			r.dropValue(d)
		}
	case "border-top", "border-right", "border-bottom", "border-left":
		b, ok := css.ParseBorder(d.Value)
		if !ok {
			r.dropValue(d)
			return
		}
		var q dom.Quad[dom.Border]
		switch d.Property {
		case "border-top":
			q.Top = &b
		case "border-right":
			q.Right = &b
		case "border-bottom":
			q.Bottom = &b
		case "border-left":
			q.Left = &b
		}
		st.Border = st.Border.Merge(q)

	case "border-width":
		if q, ok := css.ParseQuad(d.Value); ok {
			st.Border = st.Border.Merge(borderWidths(q))
		} else {
			r.dropValue(d)
		}
	case "border-color":
		if c, ok := css.ParseColor(d.Value); ok {
			b := dom.Border{Color: &c}
			st.Border = st.Border.Merge(dom.QuadAll(b))
		} else {
			r.dropValue(d)
		}

	case "width":
		if dim, ok := css.ParseDimension(d.Value); ok {
			st.Width = &dim
		} else {
			r.dropValue(d)
		}
	case "height":
		if dim, ok := css.ParseDimension(d.Value); ok {
			st.Height = &dim
		} else {
			r.dropValue(d)
		}

	case "background", "background-color":
		value := strings.TrimSpace(d.Value)
		if strings.EqualFold(value, "none") {
			c := dom.ColorOf(dom.Transparent)
			st.BackgroundColor = &c
			return
		}
		if c, ok := css.ParseColor(value); ok {
			st.BackgroundColor = &c
		} else {
			r.dropValue(d)
		}

	case "font":
		f, ok := css.ParseFontShorthand(d.Value)
		if !ok {
			r.dropValue(d)
			return
		}
		if size, ok := f.Size.Resolve(parent.FontSize(), parent.FontSize()); ok && size >= 0 {
			setFontSize(st, size)
		}
		ensureFont(st)
		if f.Style != nil {
			st.Font.Style = f.Style
		}
		if f.Weight != nil {
			st.Font.Weight = f.Weight
		}
		st.Font.LineHeight = f.LineHeight
		st.Font.Family = f.Family
	case "font-weight":
		switch strings.ToLower(strings.TrimSpace(d.Value)) {
		case "bold":
			w := dom.WeightBold
			ensureFont(st)
			st.Font.Weight = &w
		case "normal":
			w := dom.WeightNormal
			ensureFont(st)
			st.Font.Weight = &w
		default:
			r.dropValue(d)
		}
	case "font-style":
		switch strings.ToLower(strings.TrimSpace(d.Value)) {
		case "italic":
			fs := dom.StyleItalic
			ensureFont(st)
			st.Font.Style = &fs
		case "normal":
			fs := dom.StyleNormal
			ensureFont(st)
			st.Font.Style = &fs
		default:
			r.dropValue(d)
		}
	case "font-family":
		var fams []string
		for _, f := range strings.Split(d.Value, ",") {
			f = strings.Trim(strings.TrimSpace(f), `"'`)
			if f != "" {
				fams = append(fams, f)
			}
		}
		if len(fams) > 0 {
			ensureFont(st)
			st.Font.Family = fams
		}
	case "line-height":
		value := strings.TrimSpace(d.Value)
		if strings.EqualFold(value, "normal") {
			ensureFont(st)
			st.Font.LineHeight = nil
			return
		}
		if lh, ok := parseNumber(value); ok && lh >= 0 {
			ensureFont(st)
			st.Font.LineHeight = &lh
		} else {
			r.dropValue(d)
		}

	case "text-align":
		switch strings.ToLower(strings.TrimSpace(d.Value)) {
		case "left":
			a := dom.AlignLeft
			st.TextAlign = &a
		case "center":
			a := dom.AlignCenter
			st.TextAlign = &a
		case "right":
			a := dom.AlignRight
			st.TextAlign = &a
		default:
			r.dropValue(d)
		}

	default:
		r.logger.Debug("unsupported property", zap.String("property", d.Property))
	}
}

func (r *resolver) applySide(q *dom.Quad[dom.Length], d css.Declaration) {
	l, ok := css.ParseLength(d.Value)
	if !ok {
		r.dropValue(d)
		return
	}
	switch {
	case strings.HasSuffix(d.Property, "-top"):
		q.Top = &l
	case strings.HasSuffix(d.Property, "-right"):
		q.Right = &l
	case strings.HasSuffix(d.Property, "-bottom"):
		q.Bottom = &l
	case strings.HasSuffix(d.Property, "-left"):
		q.Left = &l
	}
}

func (r *resolver) dropValue(d css.Declaration) {
	r.logger.Debug("dropping malformed value",
		zap.String("property", d.Property),
		zap.String("value", d.Value))
}

func setFontSize(st *dom.Style, size float64) {
	ensureFont(st)
	st.Font.Size = &size
}

func ensureFont(st *dom.Style) {
	if st.Font == nil {
		st.Font = &dom.Font{}
	}
}

func borderWidths(q dom.Quad[dom.Length]) dom.Quad[dom.Border] {
	side := func(l *dom.Length) *dom.Border {
		if l == nil {
			return nil
		}
		return &dom.Border{Width: l}
	}
	return dom.Quad[dom.Border]{
		Top:    side(q.Top),
		Right:  side(q.Right),
		Bottom: side(q.Bottom),
		Left:   side(q.Left),
	}
}

// parseNumber accepts only the unitless line-height multiplier form.
func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
