package network

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xkilldash9x/lantern/internal/config"
	"github.com/xkilldash9x/lantern/internal/observability"
)

// Response is one fetched resource. Header names are lowercased and values
// trimmed; the body is read to connection close.
type Response struct {
	Status  int
	Headers map[string]string
	Body    []byte
}

// OK reports whether the status counts as success. Only 200 and 204 do.
func (r *Response) OK() bool {
	return r.Status == 200 || r.Status == 204
}

// Fetcher issues HTTP/1.0 GET requests over raw TCP or TLS connections. It
// never follows redirects and refuses encoded response bodies, keeping the
// byte stream it hands to the parser exactly what the server sent.
type Fetcher struct {
	cfg     config.NetworkConfig
	limiter *rate.Limiter
	logger  *zap.Logger

	// dial is replaced in tests.
	dial func(ctx context.Context, addr string) (net.Conn, error)
}

func NewFetcher(cfg config.NetworkConfig) *Fetcher {
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	d := &net.Dialer{Timeout: cfg.Timeout}
	return &Fetcher{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  observability.GetLogger().Named("network"),
		dial: func(ctx context.Context, addr string) (net.Conn, error) {
			return d.DialContext(ctx, "tcp", addr)
		},
	}
}

// Fetch resolves raw against base and requests it.
func (f *Fetcher) Fetch(ctx context.Context, raw string, base *URL) (*URL, *Response, error) {
	u, err := ParseURL(raw, base)
	if err != nil {
		return nil, nil, err
	}
	resp, err := f.Request(ctx, u)
	if err != nil {
		return u, nil, err
	}
	return u, resp, nil
}

// Request fetches one URL.
func (f *Fetcher) Request(ctx context.Context, u *URL) (*Response, error) {
	if u.Scheme == "data" {
		return decodeDataURL(u.Opaque)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	start := time.Now()
	log := f.logger.With(zap.String("request_id", id), zap.String("url", u.String()))
	log.Debug("fetching")

	resp, err := f.roundTrip(ctx, u)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}
	log.Info("fetched",
		zap.Int("status", resp.Status),
		zap.Int("bytes", len(resp.Body)),
		zap.Duration("duration", time.Since(start)))
	return resp, nil
}

func (f *Fetcher) roundTrip(ctx context.Context, u *URL) (*Response, error) {
	if f.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.cfg.Timeout)
		defer cancel()
	}

	conn, err := f.dial(ctx, u.Host())
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Host(), err)
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if u.Scheme == "https" {
		tlsConn := tls.Client(conn, &tls.Config{
			ServerName:         u.Hostname,
			InsecureSkipVerify: f.cfg.IgnoreTLSErrors,
		})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return nil, fmt.Errorf("tls handshake with %s: %w", u.Host(), err)
		}
		conn = tlsConn
	}

	if err := f.writeRequest(conn, u); err != nil {
		return nil, fmt.Errorf("write request: %w", err)
	}
	return readResponse(bufio.NewReader(conn))
}

func (f *Fetcher) writeRequest(w io.Writer, u *URL) error {
	var b strings.Builder
	fmt.Fprintf(&b, "GET %s HTTP/1.0\r\n", u.Path)
	fmt.Fprintf(&b, "Host: %s\r\n", u.Host())
	if f.cfg.UserAgent != "" {
		fmt.Fprintf(&b, "User-Agent: %s\r\n", f.cfg.UserAgent)
	}
	// Deterministic order for extra headers.
	names := make([]string, 0, len(f.cfg.Headers))
	for name := range f.cfg.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "%s: %s\r\n", name, f.cfg.Headers[name])
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func readResponse(r *bufio.Reader) (*Response, error) {
	statusLine, err := readLine(r)
	if err != nil {
		return nil, fmt.Errorf("read status line: %w", err)
	}
	parts := strings.SplitN(statusLine, " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return nil, fmt.Errorf("malformed status line %q", statusLine)
	}
	status, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("malformed status code in %q", statusLine)
	}

	headers := make(map[string]string)
	for {
		line, err := readLine(r)
		if err != nil {
			return nil, fmt.Errorf("read headers: %w", err)
		}
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(name))] = strings.TrimSpace(value)
	}

	// An encoded body would not be the document's bytes.
	if v, ok := headers["transfer-encoding"]; ok {
		return nil, fmt.Errorf("unsupported transfer-encoding %q", v)
	}
	if v, ok := headers["content-encoding"]; ok {
		return nil, fmt.Errorf("unsupported content-encoding %q", v)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return &Response{Status: status, Headers: headers, Body: body}, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// decodeDataURL serves a data URL as a synthetic 200 response. Only the
// percent-encoded form is handled; the base64 flag is refused.
func decodeDataURL(opaque string) (*Response, error) {
	meta, payload, ok := strings.Cut(opaque, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url: missing comma")
	}
	for _, param := range strings.Split(meta, ";") {
		if strings.EqualFold(strings.TrimSpace(param), "base64") {
			return nil, fmt.Errorf("base64 data urls are not supported")
		}
	}
	body, err := percentDecode(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed data url: %w", err)
	}
	headers := make(map[string]string)
	if mediaType := strings.TrimSpace(strings.Split(meta, ";")[0]); mediaType != "" {
		headers["content-type"] = mediaType
	}
	return &Response{Status: 200, Headers: headers, Body: body}, nil
}

func percentDecode(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '%' {
			out = append(out, c)
			continue
		}
		if i+2 >= len(s) {
			return nil, fmt.Errorf("truncated percent escape at offset %d", i)
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("invalid percent escape %q at offset %d", s[i:i+3], i)
		}
		out = append(out, hi<<4|lo)
		i += 2
	}
	return out, nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
