package layout

import (
	"sync"

	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/geom"
)

// Box is a node of the layout tree. A box either owns child boxes, owns a
// run of inline-level DOM nodes, or is empty; never both boxes and inlines.
// An anonymous box has a nil Node and wraps inlines inside a block
// container that also holds block-level children.
type Box struct {
	mu sync.RWMutex

	node     *dom.Node // nil for anonymous boxes and the root
	rect     geom.Rect // margin box, in logical units
	parent   *Box
	children []*Box
	inlines  []*dom.Node
}

// Node returns the owning DOM node, nil for anonymous boxes.
func (b *Box) Node() *dom.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.node
}

// Rect returns the box's margin-box rectangle.
func (b *Box) Rect() geom.Rect {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rect
}

// Parent returns the containing box, nil at the root.
func (b *Box) Parent() *Box {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.parent
}

// Children returns a snapshot of the child boxes.
func (b *Box) Children() []*Box {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Box, len(b.children))
	copy(out, b.children)
	return out
}

// Inlines returns the inline-level DOM nodes this box lays out, if any.
func (b *Box) Inlines() []*dom.Node {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*dom.Node, len(b.inlines))
	copy(out, b.inlines)
	return out
}

// IsAnonymous reports whether the box was synthesized around an inline run.
func (b *Box) IsAnonymous() bool {
	return b.Node() == nil && b.Parent() != nil
}

func (b *Box) setRect(r geom.Rect) {
	b.mu.Lock()
	b.rect = r
	b.mu.Unlock()
}

func (b *Box) appendChild(c *Box) {
	b.mu.Lock()
	c.parent = b
	b.children = append(b.children, c)
	b.mu.Unlock()
}

// style returns the computed style driving this box's flow. Anonymous boxes
// and the root fall back to the initial style.
func (b *Box) style() dom.Style {
	n := b.Node()
	if n == nil || n.Type() == dom.DocumentNode {
		return dom.InitialStyle()
	}
	return n.Style()
}

// Skippable reports whether n is excluded from layout entirely.
func Skippable(n *dom.Node) bool {
	switch n.Type() {
	case dom.CommentNode:
		return true
	case dom.ElementNode:
		return n.Style().DisplayMode() == dom.DisplayNone
	}
	return false
}

// BlockLevel reports whether n establishes block flow: its own display is a
// block type, or any descendant's is. Text and comments are never
// block-level.
func BlockLevel(n *dom.Node) bool {
	if n.Type() != dom.ElementNode {
		return false
	}
	switch n.Style().DisplayMode() {
	case dom.DisplayBlock, dom.DisplayInlineBlock, dom.DisplayListItem:
		return true
	}
	for _, c := range n.Children() {
		if !Skippable(c) && BlockLevel(c) {
			return true
		}
	}
	return false
}
