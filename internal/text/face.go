// Package text supplies font metrics and text segmentation to the layout
// engine. Faces are backed by TrueType fonts; the bundled Go fonts serve as
// defaults when no font files are configured.
package text

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/xkilldash9x/lantern/internal/config"
	"github.com/xkilldash9x/lantern/internal/dom"
)

// Metrics are the vertical measurements of a face at its size, in pixels.
type Metrics struct {
	Ascent  float64
	Descent float64
	Height  float64 // natural line height
}

// Face measures text at a fixed size, weight and style.
type Face interface {
	Metrics() Metrics
	// Advance returns the horizontal advance of r in pixels. Runes the
	// face has no glyph for measure as the replacement glyph.
	Advance(r rune) float64
}

type variant struct {
	weight dom.FontWeight
	style  dom.FontStyle
}

type faceKey struct {
	variant
	size float64
}

// Source loads fonts once and hands out cached faces per size and variant.
type Source struct {
	mu    sync.Mutex
	fonts map[variant]*truetype.Font
	faces map[faceKey]Face
	dpi   float64
}

// NewSource parses the configured font files, falling back to the bundled Go
// fonts for any variant without a configured path.
func NewSource(cfg config.RenderConfig) (*Source, error) {
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = 72
	}
	s := &Source{
		fonts: make(map[variant]*truetype.Font, 4),
		faces: make(map[faceKey]Face),
		dpi:   dpi,
	}
	load := func(v variant, path string, fallback []byte) error {
		data := fallback
		if path != "" {
			b, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading font %s: %w", path, err)
			}
			data = b
		}
		f, err := truetype.Parse(data)
		if err != nil {
			return fmt.Errorf("parsing font for %v: %w", v, err)
		}
		s.fonts[v] = f
		return nil
	}

	if err := load(variant{dom.WeightNormal, dom.StyleNormal}, cfg.FontRegular, goregular.TTF); err != nil {
		return nil, err
	}
	if err := load(variant{dom.WeightBold, dom.StyleNormal}, cfg.FontBold, gobold.TTF); err != nil {
		return nil, err
	}
	if err := load(variant{dom.WeightNormal, dom.StyleItalic}, cfg.FontItalic, goitalic.TTF); err != nil {
		return nil, err
	}
	if err := load(variant{dom.WeightBold, dom.StyleItalic}, cfg.FontBoldItalic, gobolditalic.TTF); err != nil {
		return nil, err
	}
	return s, nil
}

// Face returns a cached face for the given size, weight and style.
func (s *Source) Face(size float64, weight dom.FontWeight, style dom.FontStyle) (Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("text: invalid face size %v", size)
	}
	key := faceKey{variant{weight, style}, size}
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.faces[key]; ok {
		return f, nil
	}
	ft, ok := s.fonts[key.variant]
	if !ok || ft == nil {
		return nil, fmt.Errorf("text: no font loaded for weight %v style %v", weight, style)
	}
	f := newTTFace(ft, size, s.dpi)
	s.faces[key] = f
	return f, nil
}

// Font exposes the underlying parsed font for a variant, for the rasterizer.
func (s *Source) Font(weight dom.FontWeight, style dom.FontStyle) *truetype.Font {
	return s.fonts[variant{weight, style}]
}

// DPI returns the resolution faces are sized at.
func (s *Source) DPI() float64 {
	return s.dpi
}

// ttFace adapts a truetype face. font.Face is not safe for concurrent use,
// so measurements serialize on a mutex.
type ttFace struct {
	mu      sync.Mutex
	face    font.Face
	metrics Metrics
}

func newTTFace(f *truetype.Font, size, dpi float64) *ttFace {
	face := truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	m := face.Metrics()
	return &ttFace{
		face: face,
		metrics: Metrics{
			Ascent:  fixedToFloat(m.Ascent),
			Descent: fixedToFloat(m.Descent),
			Height:  fixedToFloat(m.Height),
		},
	}
}

func (f *ttFace) Metrics() Metrics {
	return f.metrics
}

func (f *ttFace) Advance(r rune) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	adv, ok := f.face.GlyphAdvance(r)
	if !ok {
		adv, _ = f.face.GlyphAdvance('�')
	}
	return fixedToFloat(adv)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
