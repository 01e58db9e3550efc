package render

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lantern/internal/config"
	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/geom"
	"github.com/xkilldash9x/lantern/internal/layout"
	"github.com/xkilldash9x/lantern/internal/text"
)

func testRasterizer(t *testing.T) *Rasterizer {
	t.Helper()
	fonts, err := text.NewSource(config.RenderConfig{})
	require.NoError(t, err)
	return NewRasterizer(fonts)
}

func rgba(c color.Color) (r, g, b, a uint8) {
	r32, g32, b32, a32 := c.RGBA()
	return uint8(r32 >> 8), uint8(g32 >> 8), uint8(b32 >> 8), uint8(a32 >> 8)
}

func TestPageFill(t *testing.T) {
	t.Parallel()

	dl := &layout.DisplayList{Paints: []layout.Paint{
		layout.Fill{Rect: geom.RectXYWH(0, 0, 10, 10), Color: dom.RGBA{R: 255, A: 255}},
	}}
	vp := geom.NewViewport(geom.RectXYWH(0, 0, 20, 20), 1)

	img, err := testRasterizer(t).Page(dl, vp, 20)
	require.NoError(t, err)

	r, g, b, _ := rgba(img.At(5, 5))
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})

	// Outside the fill the canvas is white.
	r, g, b, _ = rgba(img.At(15, 15))
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
}

func TestPageScaleDoublesPixels(t *testing.T) {
	t.Parallel()

	dl := &layout.DisplayList{Paints: []layout.Paint{
		layout.Fill{Rect: geom.RectXYWH(0, 0, 10, 10), Color: dom.Black},
	}}
	vp := geom.NewViewport(geom.RectXYWH(0, 0, 20, 20), 2)

	img, err := testRasterizer(t).Page(dl, vp, 20)
	require.NoError(t, err)

	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
	// The logical 10x10 fill covers 20x20 device pixels.
	r, _, _, _ := rgba(img.At(19, 19))
	assert.Equal(t, uint8(0), r)
	r, g, b, _ := rgba(img.At(25, 25))
	assert.Equal(t, [3]uint8{255, 255, 255}, [3]uint8{r, g, b})
}

func TestPageTextMarksPixels(t *testing.T) {
	t.Parallel()

	dl := &layout.DisplayList{Paints: []layout.Paint{
		layout.Text{
			Rect:    geom.RectXYWH(0, 0, 60, 20),
			Color:   dom.Black,
			Content: "mmmm",
			Size:    16,
			Weight:  dom.WeightNormal,
			Style:   dom.StyleNormal,
			Ascent:  14,
		},
	}}
	vp := geom.NewViewport(geom.RectXYWH(0, 0, 80, 30), 1)

	img, err := testRasterizer(t).Page(dl, vp, 30)
	require.NoError(t, err)

	// Some pixel in the text band must be darker than the background.
	dark := false
	for x := 0; x < 60 && !dark; x++ {
		for y := 0; y < 20 && !dark; y++ {
			r, _, _, _ := rgba(img.At(x, y))
			dark = r < 200
		}
	}
	assert.True(t, dark, "text drew nothing")
}

func TestPageInvalidSurface(t *testing.T) {
	t.Parallel()

	raster := testRasterizer(t)
	dl := &layout.DisplayList{}

	_, err := raster.Page(dl, geom.InvalidViewport(), 10)
	assert.Error(t, err)

	_, err = raster.Page(dl, geom.NewViewport(geom.RectXYWH(0, 0, 100, 100), 1), 0)
	assert.Error(t, err)
}

func TestContentHeightAndScrollLimit(t *testing.T) {
	t.Parallel()

	dl := &layout.DisplayList{Paints: []layout.Paint{
		layout.Fill{Rect: geom.RectXYWH(0, 0, 10, 300), Color: dom.Black},
		layout.Fill{Rect: geom.RectXYWH(0, 250, 10, 200), Color: dom.White},
	}}
	assert.Equal(t, 450.0, ContentHeight(dl))

	vp := geom.NewViewport(geom.RectXYWH(0, 0, 100, 400), 1)
	assert.Equal(t, 50.0, ScrollLimit(dl, vp))

	short := &layout.DisplayList{}
	assert.Equal(t, 0.0, ScrollLimit(short, vp))
}

func TestSavePNG(t *testing.T) {
	t.Parallel()

	dl := &layout.DisplayList{Paints: []layout.Paint{
		layout.Fill{Rect: geom.RectXYWH(0, 0, 5, 5), Color: dom.Black},
	}}
	img, err := testRasterizer(t).Page(dl, geom.NewViewport(geom.RectXYWH(0, 0, 10, 10), 1), 10)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "page.png")
	require.NoError(t, SavePNG(path, img))
}
