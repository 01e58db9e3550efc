// Package network implements the fetching side of the engine: a small URL
// model with base-relative resolution and a deliberately minimal HTTP/1.0
// client speaking http, https and data URLs.
package network

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// URL is the resolved location of a resource. For data URLs only Scheme and
// Opaque are populated.
type URL struct {
	Scheme   string
	Hostname string
	Port     int
	Path     string

	// Opaque holds everything after "data:" for data URLs.
	Opaque string
}

// ParseURL parses raw into a URL, resolving it against base when raw is
// relative. base may be nil for absolute URLs.
func ParseURL(raw string, base *URL) (*URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty url")
	}

	if rest, ok := strings.CutPrefix(raw, "data:"); ok {
		return &URL{Scheme: "data", Opaque: rest}, nil
	}

	if scheme, rest, ok := strings.Cut(raw, "://"); ok {
		u := &URL{Scheme: strings.ToLower(scheme)}
		host := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			host = rest[:i]
			u.Path = rest[i:]
		} else {
			u.Path = "/"
		}
		if name, portStr, ok := strings.Cut(host, ":"); ok {
			port, err := strconv.Atoi(portStr)
			if err != nil || port <= 0 || port > 65535 {
				return nil, fmt.Errorf("invalid port %q in %q", portStr, raw)
			}
			u.Hostname = name
			u.Port = port
		} else {
			u.Hostname = host
			u.Port = defaultPort(u.Scheme)
		}
		if u.Hostname == "" {
			return nil, fmt.Errorf("missing hostname in %q", raw)
		}
		return u, nil
	}

	if base == nil {
		return nil, fmt.Errorf("relative url %q without a base", raw)
	}
	u := &URL{Scheme: base.Scheme, Hostname: base.Hostname, Port: base.Port}
	if strings.HasPrefix(raw, "/") {
		u.Path = raw
		return u, nil
	}
	// Relative to the base path's directory.
	dir := "/"
	if i := strings.LastIndexByte(base.Path, '/'); i >= 0 {
		dir = base.Path[:i+1]
	}
	u.Path = path.Clean(dir + raw)
	return u, nil
}

func defaultPort(scheme string) int {
	if scheme == "https" {
		return 443
	}
	return 80
}

// Host returns the hostname:port pair for the request's Host header and the
// dial address.
func (u *URL) Host() string {
	return u.Hostname + ":" + strconv.Itoa(u.Port)
}

func (u *URL) String() string {
	if u.Scheme == "data" {
		return "data:" + u.Opaque
	}
	if u.Port == defaultPort(u.Scheme) {
		return u.Scheme + "://" + u.Hostname + u.Path
	}
	return u.Scheme + "://" + u.Host() + u.Path
}
