// Package css parses stylesheets into rules of selectors and declarations,
// and parses the individual value grammars (colors, lengths, shorthands) the
// cascade understands. Parsing is forgiving: a malformed rule is skipped at
// the next closing brace and the rest of the sheet survives.
package css

import (
	"strings"
)

// Declaration is a property/value pair (e.g. "display: none").
type Declaration struct {
	Property string
	Value    string
}

// Rule applies a declaration block to one or more selectors.
type Rule struct {
	Selectors    []ComplexSelector
	Declarations []Declaration
}

// Stylesheet is a parsed sheet in source order.
type Stylesheet struct {
	Rules []Rule
}

// Combinator relates a compound selector to the one before it.
type Combinator int

const (
	// CombinatorNone marks the first compound of a complex selector.
	CombinatorNone Combinator = iota
	// CombinatorDescendant is whitespace.
	CombinatorDescendant
	// CombinatorChild is '>'.
	CombinatorChild
	// CombinatorNextSibling is '+'.
	CombinatorNextSibling
	// CombinatorSubsequentSibling is '~'.
	CombinatorSubsequentSibling
)

func (c Combinator) String() string {
	switch c {
	case CombinatorChild:
		return " > "
	case CombinatorNextSibling:
		return " + "
	case CombinatorSubsequentSibling:
		return " ~ "
	case CombinatorDescendant:
		return " "
	}
	return ""
}

// Compound is a run of simple selectors with no combinator between them,
// like "p.note#intro". Universal is the lone "*".
type Compound struct {
	Tag       string
	ID        string
	Classes   []string
	Universal bool
}

// IsValid reports whether the compound selects anything at all.
func (c Compound) IsValid() bool {
	return c.Universal || c.Tag != "" || c.ID != "" || len(c.Classes) > 0
}

func (c Compound) String() string {
	var b strings.Builder
	if c.Universal {
		b.WriteByte('*')
	}
	b.WriteString(c.Tag)
	if c.ID != "" {
		b.WriteByte('#')
		b.WriteString(c.ID)
	}
	for _, cl := range c.Classes {
		b.WriteByte('.')
		b.WriteString(cl)
	}
	return b.String()
}

// CompoundPart pairs a compound with its preceding combinator.
type CompoundPart struct {
	Combinator Combinator
	Compound   Compound
}

// ComplexSelector is a combinator-joined sequence like "div > p.note".
// Parts[0] always carries CombinatorNone.
type ComplexSelector struct {
	Parts []CompoundPart
}

func (cs ComplexSelector) String() string {
	var b strings.Builder
	for _, p := range cs.Parts {
		b.WriteString(p.Combinator.String())
		b.WriteString(p.Compound.String())
	}
	return b.String()
}

// Parser holds the state of the CSS parser.
type Parser struct {
	input string
	pos   int
}

// NewParser prepares a parser over input.
func NewParser(input string) *Parser {
	return &Parser{input: input}
}

// ParseStylesheet is a convenience wrapper over NewParser().Parse().
func ParseStylesheet(input string) Stylesheet {
	return NewParser(input).Parse()
}

// Parse analyzes the input and builds a Stylesheet. Rules that fail to parse
// are dropped; the parser resynchronizes at the next '}'.
func (p *Parser) Parse() Stylesheet {
	var rules []Rule
	for {
		p.consumeWhitespaceAndComments()
		if p.eof() {
			break
		}
		if p.currentChar() == '@' {
			p.skipAtRule()
			continue
		}

		selectors, ok := p.parseSelectorList()
		if !ok || len(selectors) == 0 {
			p.recover()
			continue
		}
		declarations, ok := p.parseDeclarationBlock()
		if !ok {
			p.recover()
			continue
		}
		rules = append(rules, Rule{Selectors: selectors, Declarations: declarations})
	}
	return Stylesheet{Rules: rules}
}

// parseSelectorList parses "a, b > c" up to the opening brace.
func (p *Parser) parseSelectorList() ([]ComplexSelector, bool) {
	var out []ComplexSelector
	for {
		p.consumeWhitespaceAndComments()
		sel, ok := p.parseComplexSelector()
		if !ok {
			return nil, false
		}
		out = append(out, sel)
		p.consumeWhitespaceAndComments()
		if p.eof() {
			return nil, false
		}
		switch p.currentChar() {
		case ',':
			p.consumeChar()
		case '{':
			return out, true
		default:
			return nil, false
		}
	}
}

func (p *Parser) parseComplexSelector() (ComplexSelector, bool) {
	var cs ComplexSelector
	combinator := CombinatorNone
	for {
		compound, ok := p.parseCompound()
		if !ok {
			return ComplexSelector{}, false
		}
		cs.Parts = append(cs.Parts, CompoundPart{Combinator: combinator, Compound: compound})

		// Whitespace here is either a descendant combinator or mere
		// padding before ',', '{' or an explicit combinator.
		sawSpace := p.consumeWhitespaceAndComments()
		if p.eof() {
			return cs, true
		}
		switch p.currentChar() {
		case ',', '{':
			return cs, true
		case '>':
			p.consumeChar()
			combinator = CombinatorChild
		case '+':
			p.consumeChar()
			combinator = CombinatorNextSibling
		case '~':
			p.consumeChar()
			combinator = CombinatorSubsequentSibling
		default:
			if !sawSpace {
				return ComplexSelector{}, false
			}
			combinator = CombinatorDescendant
			continue
		}
		p.consumeWhitespaceAndComments()
	}
}

func (p *Parser) parseCompound() (Compound, bool) {
	var c Compound
	for !p.eof() {
		switch ch := p.currentChar(); {
		case ch == '*':
			p.consumeChar()
			c.Universal = true
		case ch == '#':
			p.consumeChar()
			id := p.consumeIdent()
			if id == "" {
				return Compound{}, false
			}
			c.ID = id
		case ch == '.':
			p.consumeChar()
			class := p.consumeIdent()
			if class == "" {
				return Compound{}, false
			}
			c.Classes = append(c.Classes, class)
		case isIdentChar(ch):
			c.Tag = strings.ToLower(p.consumeIdent())
		default:
			if !c.IsValid() {
				return Compound{}, false
			}
			return c, true
		}
	}
	return c, c.IsValid()
}

// parseDeclarationBlock parses "{ prop: value; ... }" with the cursor on '{'.
func (p *Parser) parseDeclarationBlock() ([]Declaration, bool) {
	if p.eof() || p.currentChar() != '{' {
		return nil, false
	}
	p.consumeChar()
	var decls []Declaration
	for {
		p.consumeWhitespaceAndComments()
		if p.eof() {
			// Unclosed block: keep what parsed so a truncated sheet
			// still contributes its leading rules.
			return decls, true
		}
		if p.currentChar() == '}' {
			p.consumeChar()
			return decls, true
		}
		if d, ok := p.parseDeclaration(); ok {
			decls = append(decls, d)
		}
	}
}

// parseDeclaration parses one "prop: value" ended by ';' or '}'. On a
// malformed declaration it skips to the next boundary and reports false.
func (p *Parser) parseDeclaration() (Declaration, bool) {
	property := strings.ToLower(p.consumeIdent())
	p.consumeWhitespaceAndComments()
	if property == "" || p.eof() || p.currentChar() != ':' {
		p.skipToDeclarationBoundary()
		return Declaration{}, false
	}
	p.consumeChar() // ':'
	start := p.pos
	for !p.eof() && p.currentChar() != ';' && p.currentChar() != '}' {
		p.pos++
	}
	value := strings.TrimSpace(p.input[start:p.pos])
	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
	if value == "" {
		return Declaration{}, false
	}
	return Declaration{Property: property, Value: value}, true
}

func (p *Parser) skipToDeclarationBoundary() {
	for !p.eof() && p.currentChar() != ';' && p.currentChar() != '}' {
		p.pos++
	}
	if !p.eof() && p.currentChar() == ';' {
		p.consumeChar()
	}
}

// recover resynchronizes after a malformed rule: skip past the next
// declaration block, or to end of input when none follows.
func (p *Parser) recover() {
	p.skipTo('{')
	if !p.eof() {
		p.skipBlock('{', '}')
	}
}

// skipAtRule drops "@media { ... }" and "@import ...;" forms wholesale.
func (p *Parser) skipAtRule() {
	for !p.eof() && p.currentChar() != '{' && p.currentChar() != ';' {
		p.pos++
	}
	if p.eof() {
		return
	}
	if p.currentChar() == ';' {
		p.consumeChar()
		return
	}
	p.skipBlock('{', '}')
}

// ----------------------------------------------------------------------------
// Cursor helpers
// ----------------------------------------------------------------------------

func (p *Parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *Parser) currentChar() byte {
	return p.input[p.pos]
}

func (p *Parser) consumeChar() byte {
	c := p.input[p.pos]
	p.pos++
	return c
}

func (p *Parser) startsWith(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

// consumeWhitespaceAndComments reports whether anything was consumed.
func (p *Parser) consumeWhitespaceAndComments() bool {
	start := p.pos
	for !p.eof() {
		if isSpace(p.currentChar()) {
			p.pos++
			continue
		}
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		break
	}
	return p.pos != start
}

func (p *Parser) skipComment() {
	p.pos += 2
	if end := strings.Index(p.input[p.pos:], "*/"); end >= 0 {
		p.pos += end + 2
	} else {
		p.pos = len(p.input)
	}
}

func (p *Parser) skipTo(target byte) {
	for !p.eof() && p.currentChar() != target {
		if p.startsWith("/*") {
			p.skipComment()
			continue
		}
		p.pos++
	}
}

// skipBlock consumes a balanced open..close run with the cursor on open.
func (p *Parser) skipBlock(open, close byte) {
	depth := 0
	for !p.eof() {
		switch p.currentChar() {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				p.consumeChar()
				return
			}
		}
		p.pos++
	}
}

func (p *Parser) consumeIdent() string {
	start := p.pos
	for !p.eof() && isIdentChar(p.currentChar()) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' || c == '-' || c == '_'
}
