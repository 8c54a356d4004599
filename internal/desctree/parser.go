package desctree

import (
	"fmt"

	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
)

// Parser turns a token stream from the scanner into a tree of Values by
// recursive descent over the small description-tree grammar.
type Parser struct {
	scan   *scanner
	source string
	file   string
	cur    token
}

func NewParser(source, file string) *Parser {
	p := &Parser{scan: newScanner(source), source: source, file: file}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.cur = p.scan.next()
}

func (p *Parser) errorf(format string, args ...any) *errors.LoadError {
	return errors.NewLoadError(errors.Parse, p.cur.pos, fmt.Sprintf(format, args...), p.source, p.file)
}

// ParseAll reads every top-level form until EOF and returns them as a
// single synthetic list Value, the description tree.
func (p *Parser) ParseAll() (Value, error) {
	pos := p.cur.pos
	var items []Value
	for p.cur.typ != tEOF {
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	return NewList(items, pos), nil
}

func (p *Parser) parseValue() (Value, error) {
	switch p.cur.typ {
	case tLParen:
		return p.parseList()
	case tInt:
		v := NewInt(p.cur.intVal, p.cur.pos)
		p.advance()
		return v, nil
	case tText:
		v := NewText(p.cur.raw, p.cur.pos)
		p.advance()
		return v, nil
	case tSymbol:
		v := NewSymbol(p.cur.raw, p.cur.pos)
		p.advance()
		return v, nil
	case tEOF:
		return Value{}, p.errorf("unexpected end of input")
	default:
		return Value{}, p.errorf("unexpected token %q", p.cur.raw)
	}
}

func (p *Parser) parseList() (Value, error) {
	pos := p.cur.pos
	p.advance() // consume '('
	var items []Value
	for p.cur.typ != tRParen {
		if p.cur.typ == tEOF {
			return Value{}, p.errorf("unterminated list starting at line %d", pos.Line)
		}
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	p.advance() // consume ')'
	return NewList(items, pos), nil
}

// Parse parses source into a single top-level form; used when a caller
// already knows the document is exactly one list (most description files).
func Parse(source, file string) (Value, error) {
	p := NewParser(source, file)
	v, err := p.ParseAll()
	if err != nil {
		return Value{}, err
	}
	if len(v.Items) == 1 {
		return v.Items[0], nil
	}
	return v, nil
}
