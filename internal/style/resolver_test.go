package style

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lantern/internal/css"
	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/html"
)

func resolveDoc(t *testing.T, source string, sheets ...string) *dom.Node {
	t.Helper()
	doc, err := html.Parse(source)
	require.NoError(t, err)
	parsed := make([]css.Stylesheet, 0, len(sheets))
	for _, s := range sheets {
		parsed = append(parsed, css.ParseStylesheet(s))
	}
	Resolve(doc, parsed)
	return doc
}

var (
	red  = dom.RGBA{R: 0xff, A: 0xff}
	blue = dom.RGBA{B: 0xff, A: 0xff}
)

func TestSourceOrderCascade(t *testing.T) {
	doc := resolveDoc(t,
		`<html><body><p><a id="x">t</a></p></body></html>`,
		"a { color: blue } p a { color: red }")
	a := firstElement(t, doc, "a")
	assert.Equal(t, red, a.Style().TextColor())

	// Reversed rule order flips the winner: no specificity weighting.
	doc = resolveDoc(t,
		`<html><body><p><a id="x">t</a></p></body></html>`,
		"p a { color: red } a { color: blue }")
	a = firstElement(t, doc, "a")
	assert.Equal(t, blue, a.Style().TextColor())
}

func TestInlineStyleWinsOverSheets(t *testing.T) {
	doc := resolveDoc(t,
		`<p style="color: red">x</p>`,
		"p { color: blue }")
	p := firstElement(t, doc, "p")
	assert.Equal(t, red, p.Style().TextColor())
}

func TestTextNodesInheritFontAndColor(t *testing.T) {
	doc := resolveDoc(t,
		`<p>word</p>`,
		"p { color: red; font-size: 20px; margin: 10px }")
	p := firstElement(t, doc, "p")
	txt := p.Children()[0]
	require.Equal(t, dom.TextNode, txt.Type())

	st := txt.Style()
	assert.Equal(t, red, st.TextColor())
	assert.Equal(t, 20.0, st.FontSize())
	// margin does not inherit
	assert.Equal(t, dom.Zero(), st.Margins().Top)
}

func TestFontSizeResolvesAgainstParent(t *testing.T) {
	doc := resolveDoc(t,
		`<div><p>x</p></div>`,
		"div { font-size: 20px } p { font-size: 150% }")
	p := firstElement(t, doc, "p")
	assert.Equal(t, 30.0, p.Style().FontSize())

	doc = resolveDoc(t,
		`<div><p>x</p></div>`,
		"div { font-size: 20px } p { font-size: 2em }")
	p = firstElement(t, doc, "p")
	assert.Equal(t, 40.0, p.Style().FontSize())
}

func TestCurrentColorResolvesAgainstParent(t *testing.T) {
	doc := resolveDoc(t,
		`<div><p>x</p></div>`,
		"div { color: red } p { color: currentcolor }")
	p := firstElement(t, doc, "p")
	assert.Equal(t, red, p.Style().TextColor())
}

func TestBackgroundCurrentColorUsesOwnColor(t *testing.T) {
	doc := resolveDoc(t,
		`<p>x</p>`,
		"p { color: red; background: currentcolor }")
	p := firstElement(t, doc, "p")
	assert.Equal(t, red, p.Style().Background())
}

func TestBackgroundNoneIsTransparent(t *testing.T) {
	doc := resolveDoc(t,
		`<p>x</p>`,
		"p { background: red } p { background: none }")
	p := firstElement(t, doc, "p")
	assert.Equal(t, dom.Transparent, p.Style().Background())
}

func TestUnknownDisplayRendersInline(t *testing.T) {
	doc := resolveDoc(t, `<span>x</span>`, "span { display: flex }")
	span := firstElement(t, doc, "span")
	assert.Equal(t, dom.DisplayInline, span.Style().DisplayMode())
}

func TestUserAgentSheetApplies(t *testing.T) {
	doc := resolveDoc(t, `<html><head><title>t</title></head><body><p>x</p></body></html>`)
	assert.Equal(t, dom.DisplayNone, firstElement(t, doc, "head").Style().DisplayMode())
	assert.Equal(t, dom.DisplayBlock, firstElement(t, doc, "p").Style().DisplayMode())
	assert.Equal(t, dom.DisplayBlock, firstElement(t, doc, "body").Style().DisplayMode())
}

func TestAuthorSheetOverridesUserAgent(t *testing.T) {
	doc := resolveDoc(t, `<p>x</p>`, "p { display: inline }")
	assert.Equal(t, dom.DisplayInline, firstElement(t, doc, "p").Style().DisplayMode())
}

func TestMalformedValueIsDropped(t *testing.T) {
	doc := resolveDoc(t, `<p>x</p>`, "p { color: blurple; width: wide; margin: 1vw }")
	p := firstElement(t, doc, "p")
	assert.Equal(t, dom.Black, p.Style().TextColor())
	assert.True(t, p.Style().WidthDim().Auto)
	assert.Equal(t, dom.Zero(), p.Style().Margins().Top)
}

func TestBorderShorthandAndSides(t *testing.T) {
	doc := resolveDoc(t, `<p>x</p>`,
		"p { border: 2px solid red; border-left: 4px blue }")
	b := firstElement(t, doc, "p").Style().Borders()
	require.NotNil(t, b.Top.Width)
	assert.Equal(t, dom.Px(2), *b.Top.Width)
	assert.Equal(t, red, b.Top.BorderColor(dom.Black))
	require.NotNil(t, b.Left.Width)
	assert.Equal(t, dom.Px(4), *b.Left.Width)
	assert.Equal(t, blue, b.Left.BorderColor(dom.Black))
}

func TestCollectSheetsOrderAndRecovery(t *testing.T) {
	doc, err := html.Parse(`
		<head>
			<style>p { color: red }</style>
			<link rel="stylesheet" href="/a.css">
			<link rel="stylesheet" href="/missing.css">
			<link rel="icon" href="/favicon.ico">
		</head>`)
	require.NoError(t, err)

	fetch := func(_ context.Context, href string) (string, error) {
		if href == "/a.css" {
			return "a { color: blue }", nil
		}
		return "", errors.New("not found")
	}
	sheets := CollectSheets(context.Background(), doc, fetch)
	require.Len(t, sheets, 2)
	assert.Equal(t, "p", sheets[0].Rules[0].Selectors[0].String())
	assert.Equal(t, "a", sheets[1].Rules[0].Selectors[0].String())
}
