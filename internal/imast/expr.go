// Package imast defines the expression and action AST for the
// input-method action language: a small set of concrete node types
// behind the Expr and Action interfaces, each carrying a position and a
// String() for debug dumping.
package imast

import (
	"fmt"
	"strings"

	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
)

// Expr is any node of the expression language: integer literals, symbol
// references (variables, markers, surrounding-text forms), and n-ary
// operator applications.
type Expr interface {
	exprNode()
	Pos() errors.Position
	String() string
}

// IntLit is an integer literal.
type IntLit struct {
	Value    int
	Position errors.Position
}

func (*IntLit) exprNode()                 {}
func (n *IntLit) Pos() errors.Position    { return n.Position }
func (n *IntLit) String() string          { return fmt.Sprintf("%d", n.Value) }

// SymbolRef is a bare symbol leaf. Depending on context it resolves to a
// variable's integer value, a marker position, or a surrounding-text
// character code.
type SymbolRef struct {
	Name     string
	Position errors.Position
}

func (*SymbolRef) exprNode()              {}
func (n *SymbolRef) Pos() errors.Position { return n.Position }
func (n *SymbolRef) String() string       { return n.Name }

// Op is one of the operators in the compound-expression grammar.
type Op string

const (
	OpAdd Op = "+"
	OpSub Op = "-"
	OpMul Op = "*"
	OpDiv Op = "/"
	OpAnd Op = "&"
	OpOr  Op = "|"
	OpNot Op = "!"
	OpEq  Op = "="
	OpLt  Op = "<"
	OpGt  Op = ">"
	OpLe  Op = "<="
	OpGe  Op = ">="
)

// OpExpr is a compound `(op args…)` expression. Arithmetic/logic operators
// are left-folded across Args; OpNot and the comparisons are binary (Not
// takes exactly one arg).
type OpExpr struct {
	Operator Op
	Args     []Expr
	Position errors.Position
}

func (*OpExpr) exprNode()              {}
func (n *OpExpr) Pos() errors.Position { return n.Position }
func (n *OpExpr) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("(%s %s)", n.Operator, strings.Join(parts, " "))
}
