package imeval

import (
	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imast"
)

// Eval evaluates e against ctx: integer literals evaluate to themselves,
// symbols resolve through resolveSymbol, and operator applications fold
// their arguments left to right. Evaluation changes no observable state;
// the only field of ctx it writes is the surrounding-text cache
// (PrecedingText/FollowingText) filled by `@-N`/`@+N` lookups.
func Eval(ctx *Context, e imast.Expr) (int, error) {
	switch n := e.(type) {
	case *imast.IntLit:
		return n.Value, nil
	case *imast.SymbolRef:
		return ctx.resolveSymbol(n.Name)
	case *imast.OpExpr:
		return evalOp(ctx, n)
	default:
		return 0, &undefinedSymbolError{"unknown expression node"}
	}
}

func evalOp(ctx *Context, n *imast.OpExpr) (int, error) {
	args := make([]int, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(ctx, a)
		if err != nil {
			return 0, err
		}
		args[i] = v
	}
	switch n.Operator {
	case imast.OpNot:
		if boolToInt(args[0] == 0) == 1 {
			return 1, nil
		}
		return 0, nil
	case imast.OpEq:
		return boolToInt(args[0] == args[1]), nil
	case imast.OpLt:
		return boolToInt(args[0] < args[1]), nil
	case imast.OpGt:
		return boolToInt(args[0] > args[1]), nil
	case imast.OpLe:
		return boolToInt(args[0] <= args[1]), nil
	case imast.OpGe:
		return boolToInt(args[0] >= args[1]), nil
	case imast.OpAdd:
		acc := 0
		for _, v := range args {
			acc += v
		}
		return acc, nil
	case imast.OpMul:
		acc := 1
		for _, v := range args {
			acc *= v
		}
		return acc, nil
	case imast.OpSub:
		if len(args) == 1 {
			return -args[0], nil
		}
		acc := args[0]
		for _, v := range args[1:] {
			acc -= v
		}
		return acc, nil
	case imast.OpDiv:
		acc := args[0]
		for _, v := range args[1:] {
			if v == 0 {
				return 0, &errors.RuntimeError{Kind: errors.Internal, Message: "division by zero"}
			}
			acc /= v
		}
		return acc, nil
	case imast.OpAnd:
		for _, v := range args {
			if v == 0 {
				return 0, nil
			}
		}
		return 1, nil
	case imast.OpOr:
		for _, v := range args {
			if v != 0 {
				return 1, nil
			}
		}
		return 0, nil
	default:
		return 0, &undefinedSymbolError{"unknown operator " + string(n.Operator)}
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
