// Package render rasterizes a display list into an image. The presentation
// layer shows the result in a scroll container; the snapshot command writes
// it to a PNG.
package render

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"

	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/geom"
	"github.com/xkilldash9x/lantern/internal/layout"
	"github.com/xkilldash9x/lantern/internal/text"
)

// ContentHeight returns the bottom-most extent of the display list in
// logical points. The scroll range is this minus the viewport height.
func ContentHeight(dl *layout.DisplayList) float64 {
	var bottom float64
	for _, p := range dl.Paints {
		if b := p.Bounds().Max.Y; b > bottom {
			bottom = b
		}
	}
	return bottom
}

// ScrollLimit returns how far the presentation side may scroll a document
// laid out against vp. Never negative.
func ScrollLimit(dl *layout.DisplayList, vp geom.Viewport) float64 {
	limit := ContentHeight(dl) - vp.Rect.Height()
	if limit < 0 {
		return 0
	}
	return limit
}

// Rasterizer paints display lists with the fonts layout measured against,
// so glyph positions agree with the computed advances.
type Rasterizer struct {
	fonts *text.Source

	mu    sync.Mutex
	faces map[faceKey]font.Face
}

type faceKey struct {
	size   float64
	weight dom.FontWeight
	style  dom.FontStyle
}

func NewRasterizer(fonts *text.Source) *Rasterizer {
	return &Rasterizer{fonts: fonts, faces: make(map[faceKey]font.Face)}
}

// Page renders the display list onto a white canvas covering the viewport's
// width and the given logical height, at the viewport's scale. Fills become
// axis-aligned rectangles; text draws at its rect's top-left, baseline
// offset by the paint's ascent.
func (r *Rasterizer) Page(dl *layout.DisplayList, vp geom.Viewport, height float64) (image.Image, error) {
	if !vp.Valid() {
		return nil, fmt.Errorf("render: invalid viewport")
	}
	w := int(math.Ceil(vp.Rect.Width() * vp.Scale))
	h := int(math.Ceil(height * vp.Scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: empty surface %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, p := range dl.Paints {
		switch paint := p.(type) {
		case layout.Fill:
			r.fill(dc, paint, vp.Scale)
		case layout.Text:
			if err := r.text(dc, paint, vp.Scale); err != nil {
				return nil, err
			}
		}
	}
	return dc.Image(), nil
}

func (r *Rasterizer) fill(dc *gg.Context, p layout.Fill, scale float64) {
	if p.Color.A == 0 {
		return
	}
	setColor(dc, p.Color)
	dc.DrawRectangle(p.Rect.Min.X*scale, p.Rect.Min.Y*scale, p.Rect.Width()*scale, p.Rect.Height()*scale)
	dc.Fill()
}

func (r *Rasterizer) text(dc *gg.Context, p layout.Text, scale float64) error {
	face, err := r.face(p.Size*scale, p.Weight, p.Style)
	if err != nil {
		return err
	}
	setColor(dc, p.Color)
	dc.SetFontFace(face)
	// gg draws strings at the baseline.
	dc.DrawString(p.Content, p.Rect.Min.X*scale, (p.Rect.Min.Y+p.Ascent)*scale)
	return nil
}

func (r *Rasterizer) face(size float64, weight dom.FontWeight, style dom.FontStyle) (font.Face, error) {
	key := faceKey{size, weight, style}
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	ft := r.fonts.Font(weight, style)
	if ft == nil {
		return nil, fmt.Errorf("render: no font for weight %v style %v", weight, style)
	}
	f := truetype.NewFace(ft, &truetype.Options{
		Size:    size,
		DPI:     r.fonts.DPI(),
		Hinting: font.HintingFull,
	})
	r.faces[key] = f
	return f, nil
}

func setColor(dc *gg.Context, c dom.RGBA) {
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

// SavePNG writes the rendered page to path.
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}
