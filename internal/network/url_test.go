package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURLAbsolute(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want URL
	}{
		{"http default port", "http://example.org/index.html",
			URL{Scheme: "http", Hostname: "example.org", Port: 80, Path: "/index.html"}},
		{"https default port", "https://example.org/",
			URL{Scheme: "https", Hostname: "example.org", Port: 443, Path: "/"}},
		{"explicit port", "http://localhost:8080/a/b",
			URL{Scheme: "http", Hostname: "localhost", Port: 8080, Path: "/a/b"}},
		{"no path", "http://example.org",
			URL{Scheme: "http", Hostname: "example.org", Port: 80, Path: "/"}},
		{"scheme case folded", "HTTP://example.org",
			URL{Scheme: "http", Hostname: "example.org", Port: 80, Path: "/"}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseURL(tc.raw, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *got)
		})
	}
}

func TestParseURLRelative(t *testing.T) {
	t.Parallel()

	base := &URL{Scheme: "http", Hostname: "example.org", Port: 80, Path: "/docs/page.html"}

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"sibling", "style.css", "/docs/style.css"},
		{"rooted", "/top.css", "/top.css"},
		{"parent", "../shared/a.css", "/shared/a.css"},
		{"dot", "./b.css", "/docs/b.css"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseURL(tc.raw, base)
			require.NoError(t, err)
			assert.Equal(t, "http", got.Scheme)
			assert.Equal(t, "example.org", got.Hostname)
			assert.Equal(t, 80, got.Port)
			assert.Equal(t, tc.want, got.Path)
		})
	}
}

func TestParseURLErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseURL("style.css", nil)
	assert.Error(t, err, "relative without base")

	_, err = ParseURL("http://host:notaport/", nil)
	assert.Error(t, err)

	_, err = ParseURL("http:///path", nil)
	assert.Error(t, err, "missing hostname")

	_, err = ParseURL("", nil)
	assert.Error(t, err)
}

func TestParseURLData(t *testing.T) {
	t.Parallel()

	u, err := ParseURL("data:text/html,<p>hi</p>", nil)
	require.NoError(t, err)
	assert.Equal(t, "data", u.Scheme)
	assert.Equal(t, "text/html,<p>hi</p>", u.Opaque)
}

func TestURLString(t *testing.T) {
	t.Parallel()

	u := URL{Scheme: "http", Hostname: "example.org", Port: 80, Path: "/x"}
	assert.Equal(t, "http://example.org/x", u.String())

	u.Port = 8080
	assert.Equal(t, "http://example.org:8080/x", u.String())
}
