package text

import (
	"strings"
	"unicode"
)

// CollapseWhitespace replaces every run of whitespace with a single space.
// Leading and trailing runs collapse to a space as well; the caller decides
// whether edge spaces matter.
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteByte(' ')
			inSpace = false
		}
		b.WriteRune(r)
	}
	if inSpace {
		b.WriteByte(' ')
	}
	return b.String()
}

type segClass int

const (
	classSpace segClass = iota
	classWord
	classOther
)

func classify(r rune) segClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '\'':
		return classWord
	default:
		return classOther
	}
}

// Segment is one unit of line-breakable text.
type Segment struct {
	Text  string
	Space bool // breakable glue between words
}

// Segments splits s at word boundaries: letter, digit and mark runs stay
// together, whitespace runs form glue, and any other rune stands alone.
// This approximates Unicode word segmentation closely enough for line
// breaking; lines may break at glue and between standalone runes.
func Segments(s string) []Segment {
	var out []Segment
	var run strings.Builder
	var runClass segClass
	flush := func() {
		if run.Len() == 0 {
			return
		}
		out = append(out, Segment{Text: run.String(), Space: runClass == classSpace})
		run.Reset()
	}
	for _, r := range s {
		c := classify(r)
		if c == classOther {
			flush()
			out = append(out, Segment{Text: string(r)})
			continue
		}
		if run.Len() > 0 && c != runClass {
			flush()
		}
		runClass = c
		run.WriteRune(r)
	}
	flush()
	return out
}
