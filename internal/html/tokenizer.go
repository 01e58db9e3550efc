// Package html turns HTML source into a document tree in two stages: a
// tokenizer that yields tags, text, comments and raw-text payloads, and a
// tree constructor that assembles dom nodes with implicit-close and void
// element handling.
package html

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/lantern/internal/dom"
)

// TokenKind discriminates tokenizer output.
type TokenKind int

const (
	// TokenText is a run of character data with entities decoded.
	TokenText TokenKind = iota
	// TokenTag is a start or end tag.
	TokenTag
	// TokenComment is a "<!-- -->" comment; Text holds the body.
	TokenComment
	// TokenDoctype is a "<!...>" declaration; Text holds the raw content.
	TokenDoctype
	// TokenScript is a script start tag plus its raw text content.
	TokenScript
	// TokenStyle is a style start tag plus its raw text content.
	TokenStyle
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenTag:
		return "tag"
	case TokenComment:
		return "comment"
	case TokenDoctype:
		return "doctype"
	case TokenScript:
		return "script"
	case TokenStyle:
		return "style"
	}
	return "unknown"
}

// Token is one unit of tokenizer output. Offset is the byte position of the
// token's first character in the input.
type Token struct {
	Kind   TokenKind
	Text   string // text run, comment body, doctype content, or raw script/style text
	Name   string // tag name as written
	End    bool   // true for end tags
	Attrs  []dom.Attribute
	Offset int
}

// ParseError reports malformed markup the tokenizer cannot recover from,
// with the byte offset and a snippet of the surrounding input.
type ParseError struct {
	Offset  int
	Context string
	Reason  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("html: %s at byte %d near %q", e.Reason, e.Offset, e.Context)
}

// Tokenizer walks the input byte-wise. HTML syntax characters are all ASCII
// so multi-byte runes only ever appear inside text and attribute values,
// where they are copied through untouched.
type Tokenizer struct {
	input string
	pos   int
}

// NewTokenizer prepares a tokenizer over input.
func NewTokenizer(input string) *Tokenizer {
	return &Tokenizer{input: input}
}

// Tokenize consumes the whole input and returns the token stream.
func Tokenize(input string) ([]Token, error) {
	t := NewTokenizer(input)
	var out []Token
	for {
		tok, ok, err := t.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, tok)
	}
}

// Next returns the next token. The second result is false at end of input.
func (t *Tokenizer) Next() (Token, bool, error) {
	if t.eof() {
		return Token{}, false, nil
	}
	start := t.pos
	if t.currentChar() != '<' {
		return Token{Kind: TokenText, Text: DecodeEntities(t.consumeText()), Offset: start}, true, nil
	}

	switch {
	case t.startsWith("<!--"):
		tok, err := t.consumeComment()
		return tok, err == nil, err
	case t.startsWith("<!"):
		tok, err := t.consumeDoctype()
		return tok, err == nil, err
	case t.startsWith("</") && len(t.input) > t.pos+2 && isTagNameChar(t.input[t.pos+2]),
		len(t.input) > t.pos+1 && isTagNameChar(t.input[t.pos+1]):
		tok, err := t.consumeTag()
		return tok, err == nil, err
	default:
		// A lone "<" is character data.
		t.consumeChar()
		return Token{Kind: TokenText, Text: "<", Offset: start}, true, nil
	}
}

// consumeText collects character data up to the next '<' or end of input.
func (t *Tokenizer) consumeText() string {
	start := t.pos
	rest := t.input[t.pos:]
	if i := strings.IndexByte(rest, '<'); i >= 0 {
		t.pos += i
	} else {
		t.pos = len(t.input)
	}
	return t.input[start:t.pos]
}

func (t *Tokenizer) consumeComment() (Token, error) {
	start := t.pos
	t.pos += len("<!--")
	end := strings.Index(t.input[t.pos:], "-->")
	if end < 0 {
		return Token{}, t.errorAt(start, "unterminated comment")
	}
	body := t.input[t.pos : t.pos+end]
	t.pos += end + len("-->")
	return Token{Kind: TokenComment, Text: body, Offset: start}, nil
}

func (t *Tokenizer) consumeDoctype() (Token, error) {
	start := t.pos
	t.pos += len("<!")
	end := strings.IndexByte(t.input[t.pos:], '>')
	if end < 0 {
		return Token{}, t.errorAt(start, "unterminated markup declaration")
	}
	body := t.input[t.pos : t.pos+end]
	t.pos += end + 1
	return Token{Kind: TokenDoctype, Text: body, Offset: start}, nil
}

func (t *Tokenizer) consumeTag() (Token, error) {
	start := t.pos
	t.consumeChar() // '<'
	isEnd := false
	if !t.eof() && t.currentChar() == '/' {
		isEnd = true
		t.consumeChar()
	}
	name := t.consumeTagName()

	attrs, err := t.consumeAttributes(start)
	if err != nil {
		return Token{}, err
	}
	if t.eof() {
		return Token{}, t.errorAt(start, "unterminated tag")
	}
	t.consumeChar() // '>'

	tok := Token{Kind: TokenTag, Name: name, End: isEnd, Attrs: attrs, Offset: start}
	if isEnd {
		return tok, nil
	}
	switch strings.ToLower(name) {
	case "script":
		tok.Kind = TokenScript
	case "style":
		tok.Kind = TokenStyle
	default:
		return tok, nil
	}
	raw, err := t.consumeRawText(strings.ToLower(name), start)
	if err != nil {
		return Token{}, err
	}
	tok.Text = raw
	return tok, nil
}

// consumeRawText collects everything up to the nearest case-insensitive
// closing tag for name, then consumes that closing tag through '>'.
func (t *Tokenizer) consumeRawText(name string, tagStart int) (string, error) {
	lower := strings.ToLower(t.input[t.pos:])
	end := strings.Index(lower, "</"+name)
	if end < 0 {
		return "", t.errorAt(tagStart, "unterminated "+name+" element")
	}
	raw := t.input[t.pos : t.pos+end]
	t.pos += end
	close := strings.IndexByte(t.input[t.pos:], '>')
	if close < 0 {
		return "", t.errorAt(tagStart, "unterminated "+name+" end tag")
	}
	t.pos += close + 1
	return raw, nil
}

func (t *Tokenizer) consumeAttributes(tagStart int) ([]dom.Attribute, error) {
	var attrs []dom.Attribute
	for {
		t.consumeWhitespace()
		if t.eof() {
			return nil, t.errorAt(tagStart, "unterminated tag")
		}
		switch t.currentChar() {
		case '>':
			return attrs, nil
		case '/':
			// Self-closing slash carries no meaning here; the tree
			// constructor decides voidness by name.
			t.consumeChar()
			continue
		}
		attr, ok, err := t.consumeAttribute(tagStart)
		if err != nil {
			return nil, err
		}
		if ok {
			attrs = append(attrs, attr)
		}
	}
}

func (t *Tokenizer) consumeAttribute(tagStart int) (dom.Attribute, bool, error) {
	name := t.consumeWhile(isAttrNameChar)
	if name == "" {
		// Unexpected byte inside a tag; swallow it and move on.
		t.consumeChar()
		return dom.Attribute{}, false, nil
	}
	t.consumeWhitespace()
	if t.eof() || t.currentChar() != '=' {
		return dom.Attribute{Name: name}, true, nil
	}
	t.consumeChar() // '='
	t.consumeWhitespace()
	if t.eof() {
		return dom.Attribute{}, false, t.errorAt(tagStart, "unterminated tag")
	}
	value, err := t.consumeAttrValue(tagStart)
	if err != nil {
		return dom.Attribute{}, false, err
	}
	return dom.Attribute{Name: name, Value: value}, true, nil
}

func (t *Tokenizer) consumeAttrValue(tagStart int) (string, error) {
	quote := t.currentChar()
	if quote == '"' || quote == '\'' {
		t.consumeChar()
		end := strings.IndexByte(t.input[t.pos:], quote)
		if end < 0 {
			return "", t.errorAt(tagStart, "unterminated attribute value")
		}
		value := t.input[t.pos : t.pos+end]
		t.pos += end + 1
		return DecodeEntities(value), nil
	}
	return t.consumeWhile(isUnquotedValueChar), nil
}

func (t *Tokenizer) consumeTagName() string {
	return t.consumeWhile(isTagNameChar)
}

// ----------------------------------------------------------------------------
// Cursor helpers
// ----------------------------------------------------------------------------

func (t *Tokenizer) eof() bool {
	return t.pos >= len(t.input)
}

func (t *Tokenizer) currentChar() byte {
	return t.input[t.pos]
}

func (t *Tokenizer) consumeChar() byte {
	c := t.input[t.pos]
	t.pos++
	return c
}

func (t *Tokenizer) startsWith(s string) bool {
	return strings.HasPrefix(t.input[t.pos:], s)
}

func (t *Tokenizer) consumeWhitespace() {
	for !t.eof() && isWhitespace(t.currentChar()) {
		t.pos++
	}
}

func (t *Tokenizer) consumeWhile(pred func(byte) bool) string {
	start := t.pos
	for !t.eof() && pred(t.currentChar()) {
		t.pos++
	}
	return t.input[start:t.pos]
}

func (t *Tokenizer) errorAt(offset int, reason string) error {
	lo := offset
	hi := offset + 24
	if hi > len(t.input) {
		hi = len(t.input)
	}
	return &ParseError{Offset: offset, Context: t.input[lo:hi], Reason: reason}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// Tag names admit a few extra punctuation bytes so processing instructions
// ("<?xml") and namespaced names tokenize as tags.
func isTagNameChar(c byte) bool {
	return isASCIIAlnum(c) || c == '?' || c == ':' || c == '-'
}

func isAttrNameChar(c byte) bool {
	return !isWhitespace(c) && c != '=' && c != '>' && c != '/' && c != '"' && c != '\''
}

func isUnquotedValueChar(c byte) bool {
	return !isWhitespace(c) && c != '"' && c != '\'' && c != '=' && c != '<' && c != '>' && c != '`'
}
