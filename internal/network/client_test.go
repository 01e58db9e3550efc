package network

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/lantern/internal/config"
)

// serve accepts one connection, captures the request head, writes raw and
// closes. It returns the listener address and a channel carrying the head.
func serve(t *testing.T, raw string) (string, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	heads := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		r := bufio.NewReader(conn)
		var head strings.Builder
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				break
			}
			head.WriteString(line)
			if line == "\r\n" {
				break
			}
		}
		heads <- head.String()
		io.WriteString(conn, raw)
	}()
	return ln.Addr().String(), heads
}

func testFetcher() *Fetcher {
	return NewFetcher(config.NetworkConfig{
		Timeout:   5 * time.Second,
		UserAgent: "lantern-test",
		RateLimit: 0, // unlimited
	})
}

func TestRequestHTTP10(t *testing.T) {
	addr, heads := serve(t, "HTTP/1.0 200 OK\r\nContent-Type: text/html\r\n\r\n<p>hi</p>")

	u, err := ParseURL("http://"+addr+"/index.html", nil)
	require.NoError(t, err)

	resp, err := testFetcher().Request(context.Background(), u)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.Status)
	assert.True(t, resp.OK())
	assert.Equal(t, "text/html", resp.Headers["content-type"])
	assert.Equal(t, "<p>hi</p>", string(resp.Body))

	head := <-heads
	assert.True(t, strings.HasPrefix(head, "GET /index.html HTTP/1.0\r\n"), head)
	assert.Contains(t, head, "Host: "+addr+"\r\n")
	assert.Contains(t, head, "User-Agent: lantern-test\r\n")
}

func TestRequestExtraHeaders(t *testing.T) {
	addr, heads := serve(t, "HTTP/1.0 204 No Content\r\n\r\n")

	f := NewFetcher(config.NetworkConfig{
		Timeout: 5 * time.Second,
		Headers: map[string]string{"Accept-Language": "en"},
	})
	u, err := ParseURL("http://"+addr+"/", nil)
	require.NoError(t, err)

	resp, err := f.Request(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.Status)
	assert.True(t, resp.OK())
	assert.Contains(t, <-heads, "Accept-Language: en\r\n")
}

func TestRequestNonSuccessStatusIsNotAnError(t *testing.T) {
	addr, _ := serve(t, "HTTP/1.0 404 Not Found\r\n\r\ngone")

	u, err := ParseURL("http://"+addr+"/missing", nil)
	require.NoError(t, err)

	resp, err := testFetcher().Request(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.Status)
	assert.False(t, resp.OK())
}

func TestRequestRejectsEncodedBodies(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"transfer-encoding", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n0\r\n\r\n"},
		{"content-encoding", "HTTP/1.0 200 OK\r\nContent-Encoding: gzip\r\n\r\nxx"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			addr, _ := serve(t, tc.raw)
			u, err := ParseURL("http://"+addr+"/", nil)
			require.NoError(t, err)

			_, err = testFetcher().Request(context.Background(), u)
			assert.Error(t, err)
		})
	}
}

func TestRequestMalformedStatusLine(t *testing.T) {
	addr, _ := serve(t, "garbage\r\n\r\n")

	u, err := ParseURL("http://"+addr+"/", nil)
	require.NoError(t, err)

	_, err = testFetcher().Request(context.Background(), u)
	assert.Error(t, err)
}

func TestRequestDialFailure(t *testing.T) {
	t.Parallel()

	f := testFetcher()
	f.dial = func(context.Context, string) (net.Conn, error) {
		return nil, net.ErrClosed
	}
	u := &URL{Scheme: "http", Hostname: "example.org", Port: 80, Path: "/"}
	_, err := f.Request(context.Background(), u)
	assert.ErrorIs(t, err, net.ErrClosed)
}

func TestRequestUnsupportedScheme(t *testing.T) {
	t.Parallel()

	_, err := testFetcher().Request(context.Background(), &URL{Scheme: "ftp", Hostname: "h", Port: 21, Path: "/"})
	assert.Error(t, err)
}

func TestRequestDataURL(t *testing.T) {
	t.Parallel()

	u, err := ParseURL("data:text/html,%3Cp%3Ehi there%3C%2Fp%3E", nil)
	require.NoError(t, err)

	resp, err := testFetcher().Request(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "text/html", resp.Headers["content-type"])
	assert.Equal(t, "<p>hi there</p>", string(resp.Body))
}

func TestRequestDataURLBase64Refused(t *testing.T) {
	t.Parallel()

	u, err := ParseURL("data:text/html;base64,PGI+aGk8L2I+", nil)
	require.NoError(t, err)

	_, err = testFetcher().Request(context.Background(), u)
	assert.Error(t, err)
}

func TestRequestDataURLMalformed(t *testing.T) {
	t.Parallel()

	for _, opaque := range []string{"text/html", "text/html,%G0", "text/html,%2"} {
		_, err := testFetcher().Request(context.Background(), &URL{Scheme: "data", Opaque: opaque})
		assert.Error(t, err, opaque)
	}
}

func TestFetchResolvesAgainstBase(t *testing.T) {
	addr, heads := serve(t, "HTTP/1.0 200 OK\r\n\r\nbody{}")

	base, err := ParseURL("http://"+addr+"/docs/page.html", nil)
	require.NoError(t, err)

	u, resp, err := testFetcher().Fetch(context.Background(), "style.css", base)
	require.NoError(t, err)
	assert.Equal(t, "/docs/style.css", u.Path)
	assert.Equal(t, "body{}", string(resp.Body))
	assert.Contains(t, <-heads, "GET /docs/style.css HTTP/1.0\r\n")
}
