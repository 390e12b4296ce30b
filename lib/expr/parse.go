package expr

import "fmt"

type node interface {
	eval(s *Scope) (any, error)
}

type literal struct{ v any }

type identifier struct{ name string }

type thisRef struct{}

type localsRef struct{}

type member struct {
	obj  node
	name string
}

type index struct {
	obj node
	key node
}

type unary struct {
	op string
	x  node
}

type binary struct {
	op   string
	l, r node
}

type logical struct {
	op   string
	l, r node
}

type conditional struct {
	cond, then, els node
}

// Program is a compiled expression, safe for concurrent evaluation.
type Program struct {
	src  string
	root node
}

// Source returns the text the program was compiled from.
func (p *Program) Source() string {
	return p.src
}

// Parse compiles src. An empty source (or a lone ";") compiles to a program
// that yields Undefined.
func Parse(src string) (*Program, error) {
	tokens, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokEOF || (p.peek().v == ";" && p.tokens[1].kind == tokEOF) {
		return &Program{src: src, root: literal{Undefined}}, nil
	}
	root, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokPunct && p.peek().v == ";" {
		p.next()
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.v)}
	}
	return &Program{src: src, root: root}, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// accept consumes the next token when it is one of the given punctuators.
func (p *parser) accept(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokPunct {
		return "", false
	}
	for _, op := range ops {
		if t.v == op {
			p.next()
			return op, true
		}
	}
	return "", false
}

func (p *parser) expect(op string) error {
	if _, ok := p.accept(op); !ok {
		t := p.peek()
		if t.kind == tokEOF {
			return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("expected %q, got end of input", op)}
		}
		return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("expected %q, got %q", op, t.v)}
	}
	return nil
}

func (p *parser) expression() (node, error) {
	return p.conditional()
}

func (p *parser) conditional() (node, error) {
	cond, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if _, ok := p.accept("?"); !ok {
		return cond, nil
	}
	then, err := p.conditional()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.conditional()
	if err != nil {
		return nil, err
	}
	return conditional{cond: cond, then: then, els: els}, nil
}

func (p *parser) logicalOr() (node, error) {
	l, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept("||"); !ok {
			return l, nil
		}
		r, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		l = logical{op: "||", l: l, r: r}
	}
}

func (p *parser) logicalAnd() (node, error) {
	l, err := p.equality()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept("&&"); !ok {
			return l, nil
		}
		r, err := p.equality()
		if err != nil {
			return nil, err
		}
		l = logical{op: "&&", l: l, r: r}
	}
}

// binaryLevel parses a left-associative chain of ops over operands from sub.
func (p *parser) binaryLevel(sub func() (node, error), ops ...string) (node, error) {
	l, err := sub()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.accept(ops...)
		if !ok {
			return l, nil
		}
		r, err := sub()
		if err != nil {
			return nil, err
		}
		l = binary{op: op, l: l, r: r}
	}
}

func (p *parser) equality() (node, error) {
	return p.binaryLevel(p.relational, "===", "!==", "==", "!=")
}

func (p *parser) relational() (node, error) {
	return p.binaryLevel(p.additive, "<=", ">=", "<", ">")
}

func (p *parser) additive() (node, error) {
	return p.binaryLevel(p.multiplicative, "+", "-")
}

func (p *parser) multiplicative() (node, error) {
	return p.binaryLevel(p.unary, "*", "/", "%")
}

func (p *parser) unary() (node, error) {
	if op, ok := p.accept("!", "-", "+"); ok {
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unary{op: op, x: x}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (node, error) {
	n, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.accept("."); ok {
			t := p.next()
			if t.kind != tokIdent {
				return nil, &SyntaxError{Pos: t.pos, Msg: "expected property name after '.'"}
			}
			n = member{obj: n, name: t.v}
			continue
		}
		if _, ok := p.accept("["); ok {
			key, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			n = index{obj: n, key: key}
			continue
		}
		return n, nil
	}
}

func (p *parser) primary() (node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return literal{t.num}, nil
	case tokString:
		return literal{t.v}, nil
	case tokIdent:
		switch t.v {
		case "true":
			return literal{true}, nil
		case "false":
			return literal{false}, nil
		case "null":
			return literal{nil}, nil
		case "undefined":
			return literal{Undefined}, nil
		case "this":
			return thisRef{}, nil
		case "locals":
			return localsRef{}, nil
		}
		return identifier{name: t.v}, nil
	case tokPunct:
		if t.v == "(" {
			n, err := p.expression()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return n, nil
		}
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.v)}
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of input"}
}
