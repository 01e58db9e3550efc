package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendSetsParentLinks(t *testing.T) {
	doc := NewDocument()
	p := NewElement("p", nil)
	a := NewText("a")
	b := NewText("b")
	doc.Append(p)
	p.Append(a, b)

	require.Len(t, doc.Children(), 1)
	assert.Same(t, doc, p.Parent())
	assert.Same(t, p, a.Parent())
	assert.Same(t, p, b.Parent())
	assert.Nil(t, doc.Parent())
	assert.Same(t, a, b.PreviousSibling())
	assert.Nil(t, a.PreviousSibling())
}

func TestAttrFirstWins(t *testing.T) {
	el := NewElement("a", []Attribute{
		{Name: "href", Value: "/one"},
		{Name: "href", Value: "/two"},
		{Name: "id", Value: "x"},
	})

	v, ok := el.Attr("href")
	require.True(t, ok)
	assert.Equal(t, "/one", v)

	_, ok = el.Attr("class")
	assert.False(t, ok)
}

func TestDescendantsPreOrder(t *testing.T) {
	doc := NewDocument()
	body := NewElement("body", nil)
	p := NewElement("p", nil)
	txt := NewText("hi")
	em := NewElement("em", nil)
	doc.Append(body)
	body.Append(p, em)
	p.Append(txt)

	got := doc.Descendants()
	require.Len(t, got, 4)
	assert.Same(t, body, got[0])
	assert.Same(t, p, got[1])
	assert.Same(t, txt, got[2])
	assert.Same(t, em, got[3])
}

func TestTextContent(t *testing.T) {
	p := NewElement("p", nil)
	p.Append(NewText("a"), NewElement("br", nil), NewText("b"))
	assert.Equal(t, "ab", p.TextContent())
}

func TestSetStylePanicsOnNonStylable(t *testing.T) {
	assert.Panics(t, func() { NewDocument().SetStyle(Style{}) })
	assert.Panics(t, func() { NewComment("c").SetStyle(Style{}) })
	assert.NotPanics(t, func() { NewElement("p", nil).SetStyle(Style{}) })
	assert.NotPanics(t, func() { NewText("x").SetStyle(Style{}) })
}

func TestNodeString(t *testing.T) {
	doc := NewDocument()
	p := NewElement("p", nil)
	p.Append(NewText("a"), NewElement("br", nil))
	doc.Append(p)
	assert.Equal(t, `#document(p("a" br()))`, doc.String())
}
