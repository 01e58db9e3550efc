package html

import (
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/lantern/internal/dom"
	"github.com/xkilldash9x/lantern/internal/observability"
)

// voidElements never receive children; their start tags are not pushed onto
// the open element stack and their end tags are meaningless.
var voidElements = map[string]struct{}{
	"!doctype": {},
	"area":     {},
	"base":     {},
	"br":       {},
	"col":      {},
	"embed":    {},
	"hr":       {},
	"img":      {},
	"input":    {},
	"link":     {},
	"meta":     {},
	"param":    {},
	"source":   {},
	"track":    {},
	"wbr":      {},
}

// noNest maps an arriving start tag to the open-element suffixes it
// implicitly closes, outermost first. Longer suffixes are listed before
// their prefixes so a td inside a tr is closed together with the tr.
var noNest = map[string][][]string{
	"p":     {{"p"}},
	"table": {{"p"}},
	"form":  {{"p"}},
	"h1":    {{"p"}},
	"h2":    {{"p"}},
	"h3":    {{"p"}},
	"h4":    {{"p"}},
	"h5":    {{"p"}},
	"h6":    {{"p"}},
	"li":    {{"li"}},
	"dt":    {{"dt"}, {"dd"}},
	"dd":    {{"dt"}, {"dd"}},
	"tr":    {{"tr", "td"}, {"tr", "th"}, {"tr"}},
	"td":    {{"td"}, {"th"}},
	"th":    {{"td"}, {"th"}},
}

// Parse tokenizes source and builds a document tree. Tag and attribute names
// are lowercased; doctype declarations are dropped; mismatched end tags are
// logged and skipped.
func Parse(source string) (*dom.Node, error) {
	tokens, err := Tokenize(source)
	if err != nil {
		return nil, err
	}
	return Construct(tokens), nil
}

// Construct assembles a document tree from a token stream.
func Construct(tokens []Token) *dom.Node {
	c := &constructor{
		doc:    dom.NewDocument(),
		logger: observability.GetLogger().Named("html"),
	}
	c.open = []*dom.Node{c.doc}
	for _, tok := range tokens {
		c.feed(tok)
	}
	return c.doc
}

type constructor struct {
	doc    *dom.Node
	open   []*dom.Node // open element stack; open[0] is the document
	logger *zap.Logger
}

func (c *constructor) feed(tok Token) {
	switch tok.Kind {
	case TokenText:
		c.top().Append(dom.NewText(tok.Text))
	case TokenComment:
		c.top().Append(dom.NewComment(tok.Text))
	case TokenDoctype:
		// Quirks modes are not distinguished.
	case TokenScript, TokenStyle:
		el := dom.NewElement(tok.Kind.String(), lowerAttrNames(tok.Attrs))
		if tok.Text != "" {
			el.Append(dom.NewText(tok.Text))
		}
		c.top().Append(el)
	case TokenTag:
		name := strings.ToLower(tok.Name)
		if tok.End {
			c.closeTag(name)
			return
		}
		c.openTag(name, lowerAttrNames(tok.Attrs))
	}
}

func (c *constructor) openTag(name string, attrs []dom.Attribute) {
	c.implicitClose(name)
	el := dom.NewElement(name, attrs)
	c.top().Append(el)
	if _, void := voidElements[name]; !void {
		c.open = append(c.open, el)
	}
}

// implicitClose pops open elements that cannot contain the arriving tag.
// Popping can expose another forbidden suffix, so the table is rescanned
// until the stack is clean.
func (c *constructor) implicitClose(name string) {
	patterns, ok := noNest[name]
	if !ok {
		return
	}
	for popped := true; popped; {
		popped = false
		for _, suffix := range patterns {
			if c.stackEndsWith(suffix) {
				c.open = c.open[:len(c.open)-len(suffix)]
				popped = true
				break
			}
		}
	}
}

func (c *constructor) stackEndsWith(names []string) bool {
	if len(c.open)-1 < len(names) { // document never matches
		return false
	}
	base := len(c.open) - len(names)
	for i, n := range names {
		if c.open[base+i].Name() != n {
			return false
		}
	}
	return true
}

func (c *constructor) closeTag(name string) {
	if _, void := voidElements[name]; void {
		return
	}
	for i := len(c.open) - 1; i > 0; i-- {
		if c.open[i].Name() == name {
			c.open = c.open[:i]
			return
		}
	}
	c.logger.Debug("ignoring end tag with no open element", zap.String("tag", name))
}

func (c *constructor) top() *dom.Node {
	return c.open[len(c.open)-1]
}

func lowerAttrNames(attrs []dom.Attribute) []dom.Attribute {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]dom.Attribute, len(attrs))
	for i, a := range attrs {
		out[i] = dom.Attribute{Name: strings.ToLower(a.Name), Value: a.Value}
	}
	return out
}
