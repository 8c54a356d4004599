package imloader

import (
	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imast"
)

var comparisonOps = map[string]imast.Op{
	"=":  imast.OpEq,
	"<":  imast.OpLt,
	">":  imast.OpGt,
	"<=": imast.OpLe,
	">=": imast.OpGe,
}

var operatorTable = map[string]imast.Op{
	"+": imast.OpAdd, "-": imast.OpSub, "*": imast.OpMul, "/": imast.OpDiv,
	"&": imast.OpAnd, "|": imast.OpOr, "!": imast.OpNot,
	"=": imast.OpEq, "<": imast.OpLt, ">": imast.OpGt, "<=": imast.OpLe, ">=": imast.OpGe,
}

// parseExpr compiles one description-tree value into an expression node.
// Static shape checks (arg counts for `!` and the comparisons) run here,
// at load time.
func (l *Loader) parseExpr(v desctree.Value) (imast.Expr, error) {
	switch v.Kind {
	case desctree.Int:
		return &imast.IntLit{Value: v.IntVal, Position: v.Pos}, nil
	case desctree.Symbol:
		return &imast.SymbolRef{Name: v.SymVal, Position: v.Pos}, nil
	case desctree.List:
		head, ok := v.Head()
		if !ok {
			return nil, l.errAt(errors.Parse, v.Pos, "expression list must start with an operator symbol")
		}
		op, ok := operatorTable[head]
		if !ok {
			return nil, l.errAt(errors.Validate, v.Pos, "unknown operator %q", head)
		}
		tail := v.Tail()
		args := make([]imast.Expr, 0, len(tail))
		for _, a := range tail {
			ae, err := l.parseExpr(a)
			if err != nil {
				return nil, err
			}
			args = append(args, ae)
		}
		if err := checkArity(l, v, op, args); err != nil {
			return nil, err
		}
		return &imast.OpExpr{Operator: op, Args: args, Position: v.Pos}, nil
	default:
		return nil, l.errAt(errors.Parse, v.Pos, "a %s cannot be used as an expression", v.Kind)
	}
}

func checkArity(l *Loader, v desctree.Value, op imast.Op, args []imast.Expr) error {
	switch op {
	case imast.OpNot:
		if len(args) != 1 {
			return l.errAt(errors.Validate, v.Pos, "! takes exactly one argument")
		}
	case imast.OpEq, imast.OpLt, imast.OpGt, imast.OpLe, imast.OpGe:
		if len(args) != 2 {
			return l.errAt(errors.Validate, v.Pos, "%s takes exactly two arguments", op)
		}
	default: // + - * / & | : n-ary, left-folded
		if len(args) == 0 {
			return l.errAt(errors.Validate, v.Pos, "%s requires at least one argument", op)
		}
	}
	return nil
}
