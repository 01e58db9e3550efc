package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lantern/internal/config"
	"github.com/xkilldash9x/lantern/internal/dom"
)

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a  b", "a b"},
		{"a\n\t b", "a b"},
		{"  a", " a"},
		{"a  ", "a "},
		{"", ""},
		{"   ", " "},
		{"ab", "ab"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CollapseWhitespace(tc.in))
	}
}

func TestSegments(t *testing.T) {
	segs := Segments("hello, wide world")
	require.Len(t, segs, 6)
	assert.Equal(t, Segment{Text: "hello"}, segs[0])
	assert.Equal(t, Segment{Text: ","}, segs[1])
	assert.Equal(t, Segment{Text: " ", Space: true}, segs[2])
	assert.Equal(t, Segment{Text: "wide"}, segs[3])
	assert.Equal(t, Segment{Text: " ", Space: true}, segs[4])
	assert.Equal(t, Segment{Text: "world"}, segs[5])
}

func TestSegmentsKeepsApostrophes(t *testing.T) {
	segs := Segments("don't stop")
	require.Len(t, segs, 3)
	assert.Equal(t, "don't", segs[0].Text)
}

func TestSegmentsNonLatin(t *testing.T) {
	segs := Segments("héllo wörld")
	require.Len(t, segs, 3)
	assert.Equal(t, "héllo", segs[0].Text)
	assert.Equal(t, "wörld", segs[2].Text)
}

func TestSourceFacesAreCachedAndMeasurable(t *testing.T) {
	src, err := NewSource(config.RenderConfig{DPI: 72})
	require.NoError(t, err)

	face, err := src.Face(16, dom.WeightNormal, dom.StyleNormal)
	require.NoError(t, err)
	again, err := src.Face(16, dom.WeightNormal, dom.StyleNormal)
	require.NoError(t, err)
	assert.Same(t, face.(*ttFace), again.(*ttFace))

	m := face.Metrics()
	assert.Greater(t, m.Ascent, 0.0)
	assert.Greater(t, m.Height, m.Ascent)
	assert.Greater(t, face.Advance('m'), face.Advance('i'))

	bold, err := src.Face(16, dom.WeightBold, dom.StyleNormal)
	require.NoError(t, err)
	assert.NotSame(t, face.(*ttFace), bold.(*ttFace))

	_, err = src.Face(0, dom.WeightNormal, dom.StyleNormal)
	assert.Error(t, err)
}

func TestFixedFace(t *testing.T) {
	f := FixedFace{AdvancePx: 10, AscentPx: 12, DescentPx: 4, HeightPx: 18}
	assert.Equal(t, 10.0, f.Advance('x'))
	assert.Equal(t, Metrics{Ascent: 12, Descent: 4, Height: 18}, f.Metrics())
}
