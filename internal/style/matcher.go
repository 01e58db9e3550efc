// Package style resolves computed styles: it collects stylesheets from the
// document, matches selectors against elements and cascades declarations
// into dom.Style values in source order.
package style

import (
	"strings"

	"github.com/xkilldash9x/lantern/internal/css"
	"github.com/xkilldash9x/lantern/internal/dom"
)

// Matches reports whether the complex selector selects el. Matching runs
// right to left: the last compound must match el itself, and each earlier
// compound must match an element reachable through its combinator.
func Matches(el *dom.Node, sel css.ComplexSelector) bool {
	if len(sel.Parts) == 0 {
		return false
	}
	return matchFrom(el, sel.Parts, len(sel.Parts)-1)
}

func matchFrom(el *dom.Node, parts []css.CompoundPart, i int) bool {
	if el == nil || el.Type() != dom.ElementNode {
		return false
	}
	if !matchCompound(el, parts[i].Compound) {
		return false
	}
	if i == 0 {
		return true
	}
	switch parts[i].Combinator {
	case css.CombinatorChild:
		return matchFrom(el.Parent(), parts, i-1)
	case css.CombinatorDescendant:
		for p := el.Parent(); p != nil; p = p.Parent() {
			if matchFrom(p, parts, i-1) {
				return true
			}
		}
		return false
	case css.CombinatorNextSibling:
		return matchFrom(previousElement(el), parts, i-1)
	case css.CombinatorSubsequentSibling:
		for s := previousElement(el); s != nil; s = previousElement(s) {
			if matchFrom(s, parts, i-1) {
				return true
			}
		}
		return false
	}
	return false
}

func previousElement(el *dom.Node) *dom.Node {
	for s := el.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		if s.Type() == dom.ElementNode {
			return s
		}
	}
	return nil
}

func matchCompound(el *dom.Node, c css.Compound) bool {
	if c.Tag != "" && el.Name() != c.Tag {
		return false
	}
	if c.ID != "" {
		id, ok := el.Attr("id")
		if !ok || id != c.ID {
			return false
		}
	}
	if len(c.Classes) > 0 {
		attr, ok := el.Attr("class")
		if !ok {
			return false
		}
		classes := strings.Fields(attr)
		for _, want := range c.Classes {
			if !containsString(classes, want) {
				return false
			}
		}
	}
	return true
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
