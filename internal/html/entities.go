package html

import (
	_ "embed"
	"sort"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// entities.json is the WHATWG named character reference table, keyed by the
// full reference text including the leading ampersand. Most names carry a
// terminating semicolon; a legacy subset does not.
//
//go:embed entities.json
//nolint:gochecknoglobals
var entitiesJSON []byte

type namedEntity struct {
	name string // includes "&", may end in ";"
	text string
}

// The two tables are sorted longest-name-first so a prefix scan finds the
// longest match first ("&not" must not shadow "&notin;").
var (
	entitiesWithSemicolon    []namedEntity
	entitiesWithoutSemicolon []namedEntity
)

func init() {
	var raw map[string]struct {
		Characters string `json:"characters"`
	}
	if err := jsoniter.ConfigFastest.Unmarshal(entitiesJSON, &raw); err != nil {
		panic("html: embedded entity table is invalid: " + err.Error())
	}
	for name, v := range raw {
		e := namedEntity{name: name, text: v.Characters}
		if strings.HasSuffix(name, ";") {
			entitiesWithSemicolon = append(entitiesWithSemicolon, e)
		} else {
			entitiesWithoutSemicolon = append(entitiesWithoutSemicolon, e)
		}
	}
	byLengthDesc := func(es []namedEntity) {
		sort.Slice(es, func(i, j int) bool {
			if len(es[i].name) != len(es[j].name) {
				return len(es[i].name) > len(es[j].name)
			}
			return es[i].name < es[j].name
		})
	}
	byLengthDesc(entitiesWithSemicolon)
	byLengthDesc(entitiesWithoutSemicolon)
}

// DecodeEntities replaces character references in s with the characters they
// name. Unrecognized or malformed references pass through verbatim. A legacy
// reference without a terminating semicolon is only replaced when the next
// character is not '=' and not alphanumeric, matching browser compatibility
// behavior for strings like "&amp=x".
func DecodeEntities(s string) string {
	amp := strings.IndexByte(s, '&')
	if amp < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:amp])
	s = s[amp:]
	for len(s) > 0 {
		if s[0] != '&' {
			next := strings.IndexByte(s, '&')
			if next < 0 {
				b.WriteString(s)
				break
			}
			b.WriteString(s[:next])
			s = s[next:]
			continue
		}
		text, n := decodeOne(s)
		b.WriteString(text)
		s = s[n:]
	}
	return b.String()
}

// decodeOne decodes the reference at the start of s (which begins with '&')
// and returns the replacement text and the number of input bytes consumed.
// When nothing matches it returns the ampersand itself.
func decodeOne(s string) (string, int) {
	if len(s) >= 2 && s[1] == '#' {
		if text, n, ok := decodeNumeric(s); ok {
			return text, n
		}
		return "&", 1
	}
	for _, e := range entitiesWithSemicolon {
		if strings.HasPrefix(s, e.name) {
			return e.text, len(e.name)
		}
	}
	for _, e := range entitiesWithoutSemicolon {
		if !strings.HasPrefix(s, e.name) {
			continue
		}
		// "&amp=x" and "&ampx" stay verbatim so query strings and
		// identifiers survive.
		if len(s) > len(e.name) {
			next := s[len(e.name)]
			if next == '=' || isASCIIAlnum(next) {
				return e.name, len(e.name)
			}
		}
		return e.text, len(e.name)
	}
	return "&", 1
}

// decodeNumeric handles "&#1234;" and "&#x1F600;" forms. The semicolon is
// required.
func decodeNumeric(s string) (string, int, bool) {
	i := 2 // past "&#"
	base := 10
	if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
		base = 16
		i++
	}
	start := i
	for i < len(s) && isDigitInBase(s[i], base) {
		i++
	}
	if i == start || i >= len(s) || s[i] != ';' {
		return "", 0, false
	}
	v, err := strconv.ParseInt(s[start:i], base, 32)
	if err != nil || v <= 0 || v > 0x10FFFF {
		return "", 0, false
	}
	return string(rune(v)), i + 1, true
}

func isASCIIAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigitInBase(c byte, base int) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	if base == 16 {
		return c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
	}
	return false
}
