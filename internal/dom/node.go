// Package dom holds the document tree shared by the parsing, style and layout
// engines: a mutable node tree with parent back-references, plus the computed
// Style model attached to elements and text nodes.
//
// Nodes are guarded by per-node reader-writer locks so concurrent walks are
// safe; locks are always taken parent before child and are never held across
// blocking operations. A tree is built by the HTML tree constructor, mutated
// only by the style resolver (which sets computed styles), and is immutable
// afterwards.
package dom

import (
	"fmt"
	"strings"
	"sync"
)

// NodeType discriminates the node payload.
type NodeType int

const (
	// DocumentNode is the root node type; it occurs only at the root.
	DocumentNode NodeType = iota
	// ElementNode carries a name, ordered attributes and a computed style.
	ElementNode
	// TextNode carries character data and a computed style.
	TextNode
	// CommentNode carries comment text. It never has children or a style.
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	}
	return "unknown"
}

// Attribute is a single name/value pair. Attribute order is preserved and
// duplicates are allowed; lookups return the first match.
type Attribute struct {
	Name  string
	Value string
}

// Node is a node of the document tree. The zero value is not usable; use the
// constructors.
type Node struct {
	mu sync.RWMutex

	typ      NodeType
	name     string // element name, lowercased by the tree constructor
	value    string // text or comment payload
	attrs    []Attribute
	style    Style
	parent   *Node
	children []*Node
}

// NewDocument creates a root document node.
func NewDocument() *Node {
	return &Node{typ: DocumentNode}
}

// NewElement creates an element node with the given name and attributes.
func NewElement(name string, attrs []Attribute) *Node {
	return &Node{typ: ElementNode, name: name, attrs: attrs}
}

// NewText creates a text node.
func NewText(value string) *Node {
	return &Node{typ: TextNode, value: value}
}

// NewComment creates a comment node.
func NewComment(value string) *Node {
	return &Node{typ: CommentNode, value: value}
}

// Type returns the node type.
func (n *Node) Type() NodeType {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.typ
}

// Name returns the element name, or a #-prefixed marker for non-elements.
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	switch n.typ {
	case DocumentNode:
		return "#document"
	case ElementNode:
		return n.name
	case TextNode:
		return "#text"
	default:
		return "#comment"
	}
}

// Value returns the text or comment payload; empty for other node types.
func (n *Node) Value() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.value
}

// Attrs returns a snapshot of the attribute list.
func (n *Node) Attrs() []Attribute {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Attribute, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// Attr looks up an attribute by name. Duplicates are first-wins.
func (n *Node) Attr(name string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Append attaches children to n in order and returns n for chaining. Each
// child's parent link is updated; a child must not already have a parent.
func (n *Node) Append(children ...*Node) *Node {
	n.mu.Lock()
	for _, c := range children {
		c.mu.Lock()
		c.parent = n
		c.mu.Unlock()
		n.children = append(n.children, c)
	}
	n.mu.Unlock()
	return n
}

// Parent returns the owning parent, or nil for the root.
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// PreviousSibling returns the sibling immediately before n, or nil.
func (n *Node) PreviousSibling() *Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	var prev *Node
	for _, c := range p.children {
		if c == n {
			return prev
		}
		prev = c
	}
	return nil
}

// Children returns a snapshot of the child list.
func (n *Node) Children() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Descendants returns every node below n in pre-order (n itself excluded).
func (n *Node) Descendants() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(p *Node) {
		for _, c := range p.Children() {
			out = append(out, c)
			walk(c)
		}
	}
	walk(n)
	return out
}

// TextContent concatenates the values of all text nodes below n.
func (n *Node) TextContent() string {
	var b strings.Builder
	for _, d := range n.Descendants() {
		if d.Type() == TextNode {
			b.WriteString(d.Value())
		}
	}
	return b.String()
}

// Style returns a copy of the computed style.
func (n *Node) Style() Style {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.style
}

// SetStyle stores the computed style. Calling it on a document or comment
// node is a programming error and panics.
func (n *Node) SetStyle(s Style) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.typ != ElementNode && n.typ != TextNode {
		panic(fmt.Sprintf("dom: SetStyle on %s node", n.typ))
	}
	n.style = s
}

// String renders the subtree compactly, for logs and test failure output.
func (n *Node) String() string {
	var b strings.Builder
	n.dump(&b)
	return b.String()
}

func (n *Node) dump(b *strings.Builder) {
	switch n.Type() {
	case DocumentNode, ElementNode:
		b.WriteString(n.Name())
		b.WriteByte('(')
		for i, c := range n.Children() {
			if i > 0 {
				b.WriteByte(' ')
			}
			c.dump(b)
		}
		b.WriteByte(')')
	case TextNode:
		fmt.Fprintf(b, "%q", n.Value())
	case CommentNode:
		fmt.Fprintf(b, "<!--%q-->", n.Value())
	}
}
