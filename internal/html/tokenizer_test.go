package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lantern/internal/dom"
)

func TestTokenizeTagsAndText(t *testing.T) {
	toks, err := Tokenize(`<p class="big">hi</p>`)
	require.NoError(t, err)
	require.Len(t, toks, 3)

	assert.Equal(t, TokenTag, toks[0].Kind)
	assert.Equal(t, "p", toks[0].Name)
	assert.False(t, toks[0].End)
	assert.Equal(t, []dom.Attribute{{Name: "class", Value: "big"}}, toks[0].Attrs)

	assert.Equal(t, TokenText, toks[1].Kind)
	assert.Equal(t, "hi", toks[1].Text)

	assert.Equal(t, TokenTag, toks[2].Kind)
	assert.True(t, toks[2].End)
	assert.Equal(t, "p", toks[2].Name)
}

func TestTokenizeAttributeForms(t *testing.T) {
	toks, err := Tokenize(`<a href='/x' id=plain checked data-v="a&amp;b">`)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, []dom.Attribute{
		{Name: "href", Value: "/x"},
		{Name: "id", Value: "plain"},
		{Name: "checked"},
		{Name: "data-v", Value: "a&b"},
	}, toks[0].Attrs)
}

func TestTokenizeBareLessThanIsText(t *testing.T) {
	toks, err := Tokenize("1 < 2")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, TokenText, toks[0].Kind)
	assert.Equal(t, "1 ", toks[0].Text)
	assert.Equal(t, TokenText, toks[1].Kind)
	assert.Equal(t, "<", toks[1].Text)
	assert.Equal(t, " 2", toks[2].Text)
}

func TestTokenizeCommentAndDoctype(t *testing.T) {
	toks, err := Tokenize("<!doctype html><!-- note -->x")
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, TokenDoctype, toks[0].Kind)
	assert.Equal(t, "doctype html", toks[0].Text)
	assert.Equal(t, TokenComment, toks[1].Kind)
	assert.Equal(t, " note ", toks[1].Text)
	assert.Equal(t, "x", toks[2].Text)
}

func TestTokenizeScriptRawText(t *testing.T) {
	toks, err := Tokenize(`<script type="module">if (a < b) { x("</b>") }</SCRIPT>after`)
	require.NoError(t, err)
	require.Len(t, toks, 2)
	assert.Equal(t, TokenScript, toks[0].Kind)
	assert.Equal(t, []dom.Attribute{{Name: "type", Value: "module"}}, toks[0].Attrs)
	assert.Equal(t, `if (a < b) { x("</b>") }`, toks[0].Text)
	assert.Equal(t, "after", toks[1].Text)
}

func TestTokenizeStyleRawText(t *testing.T) {
	toks, err := Tokenize(`<style>p { color: red }</style>`)
	require.NoError(t, err)
	require.Len(t, toks, 1)
	assert.Equal(t, TokenStyle, toks[0].Kind)
	assert.Equal(t, "p { color: red }", toks[0].Text)
}

func TestTokenizeShortestClosingTagWins(t *testing.T) {
	toks, err := Tokenize(`<style>a</style>b</style>`)
	require.NoError(t, err)
	require.Len(t, toks, 3)
	assert.Equal(t, TokenStyle, toks[0].Kind)
	assert.Equal(t, "a", toks[0].Text)
	assert.Equal(t, "b", toks[1].Text)
	assert.Equal(t, TokenTag, toks[2].Kind)
	assert.True(t, toks[2].End)
	assert.Equal(t, "style", toks[2].Name)
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated comment", "<!-- oops"},
		{"unterminated tag", "<p class="},
		{"unterminated quote", `<p class="x`},
		{"unterminated script", "<script>var x = 1"},
		{"unterminated doctype", "<!doctype html"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Tokenize(tc.input)
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.NotEmpty(t, perr.Context)
		})
	}
}

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"named", "a &amp; b", "a & b"},
		{"named no semicolon", "&amp &copy", "& ©"},
		{"compat equals", "&amp=x", "&amp=x"},
		{"compat alnum", "&ampx", "&ampx"},
		{"with semicolon always wins", "&amp;amp &amp;=x", "&amp &=x"},
		{"longest match", "&notin;x &not z", "∉x ¬ z"},
		{"numeric decimal", "&#65;", "A"},
		{"numeric hex", "&#x1F600;", "\U0001F600"},
		{"numeric unterminated", "&#65", "&#65"},
		{"unknown", "&bogus; &", "&bogus; &"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DecodeEntities(tc.in))
		})
	}
}
