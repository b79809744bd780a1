package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parser errors. Everything outside the grammar is ErrMalformed;
// ErrUnsupported marks well-formed constructs the simulation refuses.
var (
	ErrMalformed   = errors.New("malformed filter")
	ErrUnsupported = errors.New("unsupported filter operation")
)

type tokenKind int

const (
	tokLParen tokenKind = iota
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokTest
)

type token struct {
	kind tokenKind
	node *Node // tokTest only
	pos  int
}

// Parse parses a filter string into an expression tree.
//
// Grammar:
//
//	filter := '(' (('&'|'|') filter+ | '!' filter | test) ')'
//	test   := attr op value
//
// Only '=' tests are supported: '~=', '<=', '>=' and embedded '*' wildcards
// return ErrUnsupported. A value of exactly '*' is a presence test. Values
// may contain hex escapes (\XX), decoded before comparison.
func Parse(s string) (*Node, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("%w: empty filter", ErrMalformed)
	}

	p := parser{toks: toks}
	node, err := p.parseFilter()
	if err != nil {
		return nil, err
	}
	if p.i != len(p.toks) {
		return nil, fmt.Errorf("%w: trailing content at pos %d", ErrMalformed, p.toks[p.i].pos)
	}
	return node, nil
}

// tokenize splits the input into parens, composite operators, and test
// payloads. '&', '|', and '!' are operators only directly after '(';
// anywhere else they belong to the surrounding payload. Test payloads are
// parsed eagerly, so an unsupported operator inside one surfaces even when
// the overall grammar would not parse.
func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case (c == '&' || c == '|' || c == '!') && len(toks) > 0 && toks[len(toks)-1].kind == tokLParen:
			kind := tokAnd
			if c == '|' {
				kind = tokOr
			} else if c == '!' {
				kind = tokNot
			}
			toks = append(toks, token{kind: kind, pos: i})
			i++
		default:
			j := i
			for j < len(s) && s[j] != '(' && s[j] != ')' {
				j++
			}
			node, err := parseTest(s[i:j], i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokTest, node: node, pos: i})
			i = j
		}
	}
	return toks, nil
}

// parseTest parses one attr/op/value payload. The operator is the first '='
// plus an immediately preceding '~', '<', or '>' when the attribute stays
// non-empty; both attribute and value must be non-empty.
func parseTest(content string, pos int) (*Node, error) {
	eq := strings.IndexByte(content, '=')
	if eq < 0 {
		return nil, fmt.Errorf("%w: cannot parse test %q at pos %d", ErrMalformed, content, pos)
	}

	op := "="
	attr := content[:eq]
	if eq > 1 {
		if c := content[eq-1]; c == '~' || c == '<' || c == '>' {
			op = content[eq-1 : eq+1]
			attr = content[:eq-1]
		}
	}
	value := content[eq+1:]

	if attr == "" || value == "" {
		return nil, fmt.Errorf("%w: cannot parse test %q at pos %d", ErrMalformed, content, pos)
	}
	if op != "=" {
		return nil, fmt.Errorf("%w: operator %q", ErrUnsupported, op)
	}

	node := &Node{Type: NodeTest, Attr: attr, raw: content}
	if value == "*" {
		node.Present = true
		return node, nil
	}
	if strings.Contains(value, "*") {
		return nil, fmt.Errorf("%w: wildcard match in %q", ErrUnsupported, value)
	}
	node.Value = unescape(value)
	return node, nil
}

// unescape decodes \XX hex escapes. A backslash not followed by two hex
// digits stays literal.
func unescape(v string) string {
	if !strings.Contains(v, `\`) {
		return v
	}
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && i+2 < len(v) && isHex(v[i+1]) && isHex(v[i+2]) {
			n, _ := strconv.ParseUint(v[i+1:i+3], 16, 8)
			b.WriteByte(byte(n))
			i += 2
			continue
		}
		b.WriteByte(v[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) parseFilter() (*Node, error) {
	open, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of filter", ErrMalformed)
	}
	if open.kind != tokLParen {
		return nil, fmt.Errorf("%w: expected '(' at pos %d", ErrMalformed, open.pos)
	}

	t, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of filter", ErrMalformed)
	}

	switch t.kind {
	case tokAnd, tokOr:
		typ := NodeAnd
		if t.kind == tokOr {
			typ = NodeOr
		}
		var children []*Node
		for {
			nxt, ok := p.peek()
			if !ok {
				return nil, fmt.Errorf("%w: unexpected end of filter", ErrMalformed)
			}
			if nxt.kind == tokRParen {
				break
			}
			child, err := p.parseFilter()
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		p.i++ // closing paren
		if len(children) == 0 {
			return nil, fmt.Errorf("%w: empty composite at pos %d", ErrMalformed, t.pos)
		}
		return &Node{Type: typ, Children: children}, nil

	case tokNot:
		child, err := p.parseFilter()
		if err != nil {
			return nil, err
		}
		if err := p.expectRParen(); err != nil {
			return nil, err
		}
		return &Node{Type: NodeNot, Child: child}, nil

	case tokTest:
		if err := p.expectRParen(); err != nil {
			return nil, err
		}
		return t.node, nil

	default:
		return nil, fmt.Errorf("%w: unexpected token at pos %d", ErrMalformed, t.pos)
	}
}

func (p *parser) expectRParen() error {
	t, ok := p.next()
	if !ok {
		return fmt.Errorf("%w: unbalanced parentheses", ErrMalformed)
	}
	if t.kind != tokRParen {
		return fmt.Errorf("%w: expected ')' at pos %d", ErrMalformed, t.pos)
	}
	return nil
}

func (p *parser) next() (token, bool) {
	if p.i >= len(p.toks) {
		return token{}, false
	}
	t := p.toks[p.i]
	p.i++
	return t, true
}

func (p *parser) peek() (token, bool) {
	if p.i >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.i], true
}
