// Package desctree implements the input-method description-tree format:
// a recursive value with leaves {integer, symbol, text, list}, read from
// an s-expression-like serialization.
package desctree

import (
	"fmt"
	"strings"

	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
)

// Kind discriminates the leaves of a description-tree Value.
type Kind int

const (
	Int Kind = iota
	Symbol
	Text
	List
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "integer"
	case Symbol:
		return "symbol"
	case Text:
		return "text"
	case List:
		return "list"
	default:
		return "unknown"
	}
}

// Value is one node of a parsed description tree.
type Value struct {
	Kind Kind
	Pos  errors.Position

	IntVal  int
	SymVal  string
	TextVal string
	Items   []Value
}

func NewInt(v int, pos errors.Position) Value    { return Value{Kind: Int, IntVal: v, Pos: pos} }
func NewSymbol(s string, pos errors.Position) Value { return Value{Kind: Symbol, SymVal: s, Pos: pos} }
func NewText(s string, pos errors.Position) Value { return Value{Kind: Text, TextVal: s, Pos: pos} }
func NewList(items []Value, pos errors.Position) Value {
	return Value{Kind: List, Items: items, Pos: pos}
}

func (v Value) IsNil() bool  { return v.Kind == Symbol && v.SymVal == "nil" }
func (v Value) IsList() bool { return v.Kind == List }

// Head returns the first element's symbol name if v is a non-empty list
// whose first element is a symbol, e.g. the tag of a top-level section.
func (v Value) Head() (string, bool) {
	if v.Kind != List || len(v.Items) == 0 {
		return "", false
	}
	if v.Items[0].Kind != Symbol {
		return "", false
	}
	return v.Items[0].SymVal, true
}

// Tail returns all elements after the first.
func (v Value) Tail() []Value {
	if v.Kind != List || len(v.Items) == 0 {
		return nil
	}
	return v.Items[1:]
}

func (v Value) String() string {
	switch v.Kind {
	case Int:
		return fmt.Sprintf("%d", v.IntVal)
	case Symbol:
		return v.SymVal
	case Text:
		return fmt.Sprintf("%q", v.TextVal)
	case List:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = it.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return "<invalid>"
	}
}
