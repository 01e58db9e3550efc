package css

import (
	"strconv"
	"strings"

	"github.com/xkilldash9x/lantern/internal/dom"
)

// namedColors are the CSS2.1 keywords plus rebeccapurple.
var namedColors = map[string]dom.RGBA{
	"aqua":          {R: 0x00, G: 0xff, B: 0xff, A: 0xff},
	"black":         {R: 0x00, G: 0x00, B: 0x00, A: 0xff},
	"blue":          {R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	"fuchsia":       {R: 0xff, G: 0x00, B: 0xff, A: 0xff},
	"gray":          {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"green":         {R: 0x00, G: 0x80, B: 0x00, A: 0xff},
	"lime":          {R: 0x00, G: 0xff, B: 0x00, A: 0xff},
	"maroon":        {R: 0x80, G: 0x00, B: 0x00, A: 0xff},
	"navy":          {R: 0x00, G: 0x00, B: 0x80, A: 0xff},
	"olive":         {R: 0x80, G: 0x80, B: 0x00, A: 0xff},
	"orange":        {R: 0xff, G: 0xa5, B: 0x00, A: 0xff},
	"purple":        {R: 0x80, G: 0x00, B: 0x80, A: 0xff},
	"rebeccapurple": {R: 0x66, G: 0x33, B: 0x99, A: 0xff},
	"red":           {R: 0xff, G: 0x00, B: 0x00, A: 0xff},
	"silver":        {R: 0xc0, G: 0xc0, B: 0xc0, A: 0xff},
	"teal":          {R: 0x00, G: 0x80, B: 0x80, A: 0xff},
	"white":         {R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	"yellow":        {R: 0xff, G: 0xff, B: 0x00, A: 0xff},
}

// ParseColor parses color keywords, hex notations and rgb()/rgba().
func ParseColor(s string) (dom.Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return dom.Color{}, false
	case "transparent":
		return dom.ColorOf(dom.Transparent), true
	case "currentcolor":
		return dom.CurrentColor(), true
	}
	if c, ok := namedColors[s]; ok {
		return dom.ColorOf(c), true
	}
	if strings.HasPrefix(s, "#") {
		return parseHexColor(s[1:])
	}
	if strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(") {
		return parseRGBFunc(s)
	}
	return dom.Color{}, false
}

func parseHexColor(hex string) (dom.Color, bool) {
	nib := func(c byte) (uint8, bool) {
		switch {
		case c >= '0' && c <= '9':
			return c - '0', true
		case c >= 'a' && c <= 'f':
			return c - 'a' + 10, true
		}
		return 0, false
	}
	byteAt := func(i int) (uint8, bool) {
		hi, ok1 := nib(hex[i])
		lo, ok2 := nib(hex[i+1])
		return hi<<4 | lo, ok1 && ok2
	}
	short := func(i int) (uint8, bool) {
		v, ok := nib(hex[i])
		return v<<4 | v, ok
	}

	var c dom.RGBA
	var ok [4]bool
	switch len(hex) {
	case 3, 4:
		c.R, ok[0] = short(0)
		c.G, ok[1] = short(1)
		c.B, ok[2] = short(2)
		c.A, ok[3] = 0xff, true
		if len(hex) == 4 {
			c.A, ok[3] = short(3)
		}
	case 6, 8:
		c.R, ok[0] = byteAt(0)
		c.G, ok[1] = byteAt(2)
		c.B, ok[2] = byteAt(4)
		c.A, ok[3] = 0xff, true
		if len(hex) == 8 {
			c.A, ok[3] = byteAt(6)
		}
	default:
		return dom.Color{}, false
	}
	if !ok[0] || !ok[1] || !ok[2] || !ok[3] {
		return dom.Color{}, false
	}
	return dom.ColorOf(c), true
}

func parseRGBFunc(s string) (dom.Color, bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return dom.Color{}, false
	}
	args := strings.Split(s[open+1:len(s)-1], ",")
	if len(args) != 3 && len(args) != 4 {
		return dom.Color{}, false
	}

	channel := func(arg string) (uint8, bool) {
		arg = strings.TrimSpace(arg)
		if v, ok := strings.CutSuffix(arg, "%"); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return 0, false
			}
			return clampChannel(f / 100 * 255), true
		}
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, false
		}
		return clampChannel(f), true
	}

	var c dom.RGBA
	var ok bool
	if c.R, ok = channel(args[0]); !ok {
		return dom.Color{}, false
	}
	if c.G, ok = channel(args[1]); !ok {
		return dom.Color{}, false
	}
	if c.B, ok = channel(args[2]); !ok {
		return dom.Color{}, false
	}
	c.A = 0xff
	if len(args) == 4 {
		alpha := strings.TrimSpace(args[3])
		if v, hasPct := strings.CutSuffix(alpha, "%"); hasPct {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return dom.Color{}, false
			}
			c.A = clampChannel(f / 100 * 255)
		} else {
			f, err := strconv.ParseFloat(alpha, 64)
			if err != nil {
				return dom.Color{}, false
			}
			c.A = clampChannel(f * 255)
		}
	}
	return dom.ColorOf(c), true
}

func clampChannel(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f + 0.5)
}

// ParseLength parses "0", percentages, px and em values.
func ParseLength(s string) (dom.Length, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "0" {
		return dom.Zero(), true
	}
	num := func(v string) (float64, bool) {
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	if v, ok := strings.CutSuffix(s, "%"); ok {
		if f, ok := num(v); ok {
			return dom.Percent(f), true
		}
		return dom.Length{}, false
	}
	if v, ok := strings.CutSuffix(s, "px"); ok {
		if f, ok := num(v); ok {
			return dom.Px(f), true
		}
		return dom.Length{}, false
	}
	if v, ok := strings.CutSuffix(s, "em"); ok {
		if f, ok := num(v); ok {
			return dom.Em(f), true
		}
		return dom.Length{}, false
	}
	return dom.Length{}, false
}

// ParseDimension parses "auto" or a length.
func ParseDimension(s string) (dom.Dimension, bool) {
	if strings.EqualFold(strings.TrimSpace(s), "auto") {
		return dom.AutoDim(), true
	}
	l, ok := ParseLength(s)
	if !ok {
		return dom.Dimension{}, false
	}
	return dom.DimOf(l), true
}

// ParseQuad parses a 1-4 value length shorthand like "10px 5px".
func ParseQuad(s string) (dom.Quad[dom.Length], bool) {
	fields := strings.Fields(s)
	lengths := make([]dom.Length, 0, len(fields))
	for _, f := range fields {
		l, ok := ParseLength(f)
		if !ok {
			return dom.Quad[dom.Length]{}, false
		}
		lengths = append(lengths, l)
	}
	return dom.QuadOf(lengths...)
}

// ParseBorder parses the "border" shorthand: a whitespace-separated mix of
// one width, one color and an optional line-style keyword, in any order.
// The line style is accepted but not retained; every border paints solid.
func ParseBorder(s string) (dom.Border, bool) {
	var out dom.Border
	seen := false
	for _, tok := range strings.Fields(s) {
		switch strings.ToLower(tok) {
		case "solid", "none", "hidden", "dashed", "dotted", "double":
			seen = true
			continue
		}
		if l, ok := ParseLength(tok); ok && out.Width == nil {
			out.Width = &l
			seen = true
			continue
		}
		if c, ok := ParseColor(tok); ok && out.Color == nil {
			out.Color = &c
			seen = true
			continue
		}
		return dom.Border{}, false
	}
	return out, seen
}

// FontShorthand is the result of parsing the "font" property: optional style
// and weight keywords, a mandatory size with optional "/line-height"
// multiplier, and a font family list.
type FontShorthand struct {
	Style      *dom.FontStyle
	Weight     *dom.FontWeight
	Size       dom.Length
	LineHeight *float64
	Family     []string
}

// ParseFontShorthand parses "font: [normal|italic|bold]* size[/lh] family".
func ParseFontShorthand(s string) (FontShorthand, bool) {
	var out FontShorthand
	rest := strings.TrimSpace(s)

	// Leading keywords, in any order, up to the size.
	for {
		token, tail := cutToken(rest)
		switch strings.ToLower(token) {
		case "normal":
			// Resets both axes a preceding sheet may have set.
			style := dom.StyleNormal
			weight := dom.WeightNormal
			out.Style = &style
			out.Weight = &weight
		case "italic":
			style := dom.StyleItalic
			out.Style = &style
		case "bold":
			weight := dom.WeightBold
			out.Weight = &weight
		default:
			goto size
		}
		rest = tail
	}

size:
	token, rest := cutToken(rest)
	if token == "" {
		return FontShorthand{}, false
	}
	sizePart := token
	if slash := strings.IndexByte(token, '/'); slash >= 0 {
		sizePart = token[:slash]
		lh, err := strconv.ParseFloat(token[slash+1:], 64)
		if err != nil || lh < 0 {
			return FontShorthand{}, false
		}
		out.LineHeight = &lh
	}
	size, ok := ParseLength(sizePart)
	if !ok {
		return FontShorthand{}, false
	}
	out.Size = size

	if rest == "" {
		return FontShorthand{}, false
	}
	for _, fam := range strings.Split(rest, ",") {
		fam = strings.Trim(strings.TrimSpace(fam), `"'`)
		if fam != "" {
			out.Family = append(out.Family, fam)
		}
	}
	if len(out.Family) == 0 {
		return FontShorthand{}, false
	}
	return out, true
}

// cutToken splits off the first whitespace-delimited token.
func cutToken(s string) (token, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
