package filter

import (
	"errors"
	"fmt"
)

// ErrEmpty is returned when a sub-expression has no terms, e.g. "a AND".
var ErrEmpty = errors.New("filter: empty expression")

// Parse parses input. Blank input yields a nil node and no error.
//
//	expr  = and { OR and }
//	and   = unary { AND unary }
//	unary = NOT unary | "(" expr ")" | term
//	term  = WORD [ (":" | "!=" | "~") (WORD | QUOTED) ] | QUOTED
func Parse(input string) (Node, error) {
	toks, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == kindEnd {
		return nil, nil
	}
	n, err := p.or()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != kindEnd {
		return nil, fmt.Errorf("filter: unexpected %q at %d", t.text, t.pos)
	}
	return n, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

// next consumes a token. The end token is never consumed.
func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != kindEnd {
		p.pos++
	}
	return t
}

func (p *parser) or() (Node, error) {
	left, err := p.and()
	for err == nil && p.peek().kind == kindOr {
		p.next()
		var right Node
		if right, err = p.and(); err == nil {
			left = Or{Left: left, Right: right}
		}
	}
	return left, err
}

func (p *parser) and() (Node, error) {
	left, err := p.unary()
	for err == nil && p.peek().kind == kindAnd {
		p.next()
		var right Node
		if right, err = p.unary(); err == nil {
			left = And{Left: left, Right: right}
		}
	}
	return left, err
}

func (p *parser) unary() (Node, error) {
	t := p.next()
	switch t.kind {
	case kindNot:
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Not{Expr: inner}, nil
	case kindOpen:
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != kindClose {
			return nil, fmt.Errorf("filter: missing ')' for '(' at %d", t.pos)
		}
		return inner, nil
	case kindQuoted:
		return Term{Op: OpContains, Value: t.text}, nil
	case kindWord:
		if p.peek().kind != kindCompare {
			return Term{Op: OpContains, Value: t.text}, nil
		}
		cmp := p.next()
		v := p.next()
		if v.kind != kindWord && v.kind != kindQuoted {
			return nil, fmt.Errorf("filter: %s%s needs a value", t.text, cmp.text)
		}
		return Term{Key: t.text, Op: cmp.op, Value: v.text}, nil
	case kindEnd:
		return nil, ErrEmpty
	default:
		return nil, fmt.Errorf("filter: unexpected %q at %d", t.text, t.pos)
	}
}
