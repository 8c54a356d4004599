package imloader

import (
	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imast"
)

// parseActionList compiles a sequence of description-tree values into an
// ActionList, applying the top-level normalization rules: a bare
// text/int becomes `insert <value>`, and a bare list whose first element
// is a text or nested list becomes `insert (groups…)`.
func (l *Loader) parseActionList(items []desctree.Value) (imast.ActionList, error) {
	out := make(imast.ActionList, 0, len(items))
	for _, item := range items {
		a, err := l.parseAction(item)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (l *Loader) parseAction(v desctree.Value) (imast.Action, error) {
	switch v.Kind {
	case desctree.Text:
		text := v.TextVal
		return &imast.InsertAction{Text: &text, Position: v.Pos}, nil
	case desctree.Int:
		n := v.IntVal
		return &imast.InsertAction{Int: &n, Position: v.Pos}, nil
	case desctree.Symbol:
		// A bare symbol names a zero-argument macro call.
		l.pendingRefs = append(l.pendingRefs, pendingMacroRef{name: v.SymVal, pos: v.Pos})
		return &imast.MacroCallAction{Name: v.SymVal, Position: v.Pos}, nil
	case desctree.List:
		return l.parseActionListItem(v)
	default:
		return nil, l.errAt(errors.Parse, v.Pos, "invalid action")
	}
}

func (l *Loader) parseActionListItem(v desctree.Value) (imast.Action, error) {
	if len(v.Items) == 0 {
		return nil, l.errAt(errors.Parse, v.Pos, "empty action")
	}

	first := v.Items[0]
	if first.Kind != desctree.Symbol {
		// First element is a text or nested list: insert-groups form, or
		// (when the nested list is itself a comparison test) a compare
		// action.
		if first.Kind == desctree.List {
			if head, ok := first.Head(); ok {
				if _, isCmp := comparisonOps[head]; isCmp {
					return l.parseNestedCompare(v)
				}
			}
		}
		groups, err := l.parseGroupsArg(v)
		if err != nil {
			return nil, err
		}
		return &imast.InsertAction{Groups: groups, Position: v.Pos}, nil
	}

	head := first.SymVal
	tail := v.Tail()

	if op, ok := comparisonOps[head]; ok {
		return l.parseFlatCompare(v, op, tail)
	}

	switch head {
	case "insert":
		return l.parseInsert(v, tail)
	case "delete":
		if len(tail) != 1 {
			return nil, l.errAt(errors.Validate, v.Pos, "delete takes exactly one argument")
		}
		e, err := l.parseExpr(tail[0])
		if err != nil {
			return nil, err
		}
		return &imast.DeleteAction{Target: e, Position: v.Pos}, nil
	case "move":
		if len(tail) != 1 {
			return nil, l.errAt(errors.Validate, v.Pos, "move takes exactly one argument")
		}
		e, err := l.parseExpr(tail[0])
		if err != nil {
			return nil, err
		}
		return &imast.MoveAction{Target: e, Position: v.Pos}, nil
	case "mark":
		if len(tail) != 1 || tail[0].Kind != desctree.Symbol {
			return nil, l.errAt(errors.Validate, v.Pos, "mark takes exactly one marker symbol")
		}
		return &imast.MarkAction{Marker: tail[0].SymVal, Position: v.Pos}, nil
	case "pushback":
		return l.parsePushback(v, tail)
	case "undo":
		return l.parseUndo(v, tail)
	case "commit":
		return &imast.CommitAction{Position: v.Pos}, nil
	case "unhandle":
		return &imast.UnhandleAction{Position: v.Pos}, nil
	case "shift":
		if len(tail) != 1 || tail[0].Kind != desctree.Symbol {
			return nil, l.errAt(errors.Validate, v.Pos, "shift takes exactly one state symbol")
		}
		return &imast.ShiftAction{State: tail[0].SymVal, Position: v.Pos}, nil
	case "select":
		if len(tail) != 1 {
			return nil, l.errAt(errors.Validate, v.Pos, "select takes exactly one argument")
		}
		e, err := l.parseExpr(tail[0])
		if err != nil {
			return nil, err
		}
		return &imast.SelectAction{Index: e, Position: v.Pos}, nil
	case "show":
		return &imast.ShowAction{Position: v.Pos}, nil
	case "hide":
		return &imast.HideAction{Position: v.Pos}, nil
	case "call":
		return l.parseCall(v, tail)
	case "set", "add", "sub", "mul", "div":
		return l.parseAssign(v, imast.AssignOp(head), tail)
	case "cond":
		return l.parseCond(v, tail)
	default:
		// Any other name is a macro call. Macros take no parameters; extra
		// arguments are a validation error rather than silently ignored.
		if len(tail) != 0 {
			return nil, l.errAt(errors.Validate, v.Pos, "macro call %q takes no arguments", head)
		}
		l.pendingRefs = append(l.pendingRefs, pendingMacroRef{name: head, pos: v.Pos})
		return &imast.MacroCallAction{Name: head, Position: v.Pos}, nil
	}
}

func (l *Loader) parseInsert(v desctree.Value, tail []desctree.Value) (imast.Action, error) {
	if len(tail) != 1 {
		return nil, l.errAt(errors.Validate, v.Pos, "insert takes exactly one argument")
	}
	arg := tail[0]
	switch arg.Kind {
	case desctree.Text:
		text := arg.TextVal
		return &imast.InsertAction{Text: &text, Position: v.Pos}, nil
	case desctree.Int:
		n := arg.IntVal
		return &imast.InsertAction{Int: &n, Position: v.Pos}, nil
	case desctree.Symbol:
		return &imast.InsertAction{Symbol: arg.SymVal, Position: v.Pos}, nil
	case desctree.List:
		groups, err := l.parseGroupsArg(arg)
		if err != nil {
			return nil, err
		}
		return &imast.InsertAction{Groups: groups, Position: v.Pos}, nil
	default:
		return nil, l.errAt(errors.Parse, arg.Pos, "invalid insert argument")
	}
}

// parseGroupsArg turns a description list into candidate groups: a list of
// lists of text is read as multiple groups; a flat list of text is read as
// a single implicit group.
func (l *Loader) parseGroupsArg(v desctree.Value) ([][]string, error) {
	if len(v.Items) == 0 {
		return nil, l.errAt(errors.Validate, v.Pos, "candidate group list must not be empty")
	}
	if v.Items[0].Kind == desctree.List {
		groups := make([][]string, 0, len(v.Items))
		for _, g := range v.Items {
			items, err := textList(l, g)
			if err != nil {
				return nil, err
			}
			groups = append(groups, items)
		}
		return groups, nil
	}
	items, err := textList(l, v)
	if err != nil {
		return nil, err
	}
	return [][]string{items}, nil
}

func textList(l *Loader, v desctree.Value) ([]string, error) {
	out := make([]string, 0, len(v.Items))
	for _, it := range v.Items {
		if it.Kind != desctree.Text {
			return nil, l.errAt(errors.Validate, it.Pos, "candidate group entries must be text")
		}
		out = append(out, it.TextVal)
	}
	return out, nil
}

func (l *Loader) parsePushback(v desctree.Value, tail []desctree.Value) (imast.Action, error) {
	if len(tail) != 1 {
		return nil, l.errAt(errors.Validate, v.Pos, "pushback takes exactly one argument")
	}
	arg := tail[0]
	switch arg.Kind {
	case desctree.Int:
		n := arg.IntVal
		return &imast.PushbackAction{N: &n, Position: v.Pos}, nil
	case desctree.Text:
		keys := make([]string, 0, len(arg.TextVal))
		for _, r := range arg.TextVal {
			keys = append(keys, string(r))
		}
		return &imast.PushbackAction{Keys: keys, Position: v.Pos}, nil
	case desctree.List:
		keys := make([]string, 0, len(arg.Items))
		for _, it := range arg.Items {
			if it.Kind != desctree.Symbol {
				return nil, l.errAt(errors.Validate, it.Pos, "pushback key list entries must be symbols")
			}
			keys = append(keys, it.SymVal)
		}
		return &imast.PushbackAction{Keys: keys, Position: v.Pos}, nil
	default:
		return nil, l.errAt(errors.Parse, arg.Pos, "invalid pushback argument")
	}
}

func (l *Loader) parseUndo(v desctree.Value, tail []desctree.Value) (imast.Action, error) {
	if len(tail) == 0 {
		return &imast.UndoAction{Position: v.Pos}, nil
	}
	if len(tail) != 1 || tail[0].Kind != desctree.Int {
		return nil, l.errAt(errors.Validate, v.Pos, "undo takes at most one integer argument")
	}
	n := tail[0].IntVal
	return &imast.UndoAction{Delta: &n, Position: v.Pos}, nil
}

func (l *Loader) parseCall(v desctree.Value, tail []desctree.Value) (imast.Action, error) {
	if len(tail) < 2 || tail[0].Kind != desctree.Symbol || tail[1].Kind != desctree.Symbol {
		return nil, l.errAt(errors.Validate, v.Pos, "call takes (module function args…)")
	}
	module, function := tail[0].SymVal, tail[1].SymVal
	args := make([]imast.Expr, 0, len(tail)-2)
	for _, a := range tail[2:] {
		e, err := l.parseExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, e)
	}
	return &imast.CallAction{Module: module, Function: function, Args: args, Position: v.Pos}, nil
}

func (l *Loader) parseAssign(v desctree.Value, op imast.AssignOp, tail []desctree.Value) (imast.Action, error) {
	if len(tail) != 2 || tail[0].Kind != desctree.Symbol {
		return nil, l.errAt(errors.Validate, v.Pos, "%s takes (var expr)", op)
	}
	e, err := l.parseExpr(tail[1])
	if err != nil {
		return nil, err
	}
	if op == imast.AssignDiv {
		if lit, ok := e.(*imast.IntLit); ok && lit.Value == 0 {
			return nil, l.errAt(errors.Validate, v.Pos, "division by a literal zero")
		}
	}
	return &imast.AssignAction{Op: op, Var: tail[0].SymVal, Value: e, Position: v.Pos}, nil
}

func (l *Loader) parseFlatCompare(v desctree.Value, op imast.Op, tail []desctree.Value) (imast.Action, error) {
	if len(tail) < 3 || len(tail) > 4 {
		return nil, l.errAt(errors.Validate, v.Pos, "%s takes (left right then [else])", op)
	}
	left, err := l.parseExpr(tail[0])
	if err != nil {
		return nil, err
	}
	right, err := l.parseExpr(tail[1])
	if err != nil {
		return nil, err
	}
	then, err := l.parseAction(tail[2])
	if err != nil {
		return nil, err
	}
	var elseList imast.ActionList
	if len(tail) == 4 {
		elseAct, err := l.parseAction(tail[3])
		if err != nil {
			return nil, err
		}
		elseList = imast.ActionList{elseAct}
	}
	return &imast.CompareAction{
		Op: compareOpOf(op), Left: left, Right: right,
		Then: imast.ActionList{then}, Else: elseList, Position: v.Pos,
	}, nil
}

// parseNestedCompare handles the `((op a b) then [else])` shape used when
// the comparison test is written as its own nested list, e.g.
// `((< x 2) (insert "small") (insert "big"))`.
func (l *Loader) parseNestedCompare(v desctree.Value) (imast.Action, error) {
	test := v.Items[0]
	head, _ := test.Head()
	op := comparisonOps[head]
	testTail := test.Tail()
	if len(testTail) != 2 {
		return nil, l.errAt(errors.Validate, test.Pos, "%s test takes exactly two arguments", head)
	}
	left, err := l.parseExpr(testTail[0])
	if err != nil {
		return nil, err
	}
	right, err := l.parseExpr(testTail[1])
	if err != nil {
		return nil, err
	}
	rest := v.Items[1:]
	if len(rest) < 1 || len(rest) > 2 {
		return nil, l.errAt(errors.Validate, v.Pos, "compare action needs a then-action and optional else-action")
	}
	then, err := l.parseAction(rest[0])
	if err != nil {
		return nil, err
	}
	var elseList imast.ActionList
	if len(rest) == 2 {
		elseAct, err := l.parseAction(rest[1])
		if err != nil {
			return nil, err
		}
		elseList = imast.ActionList{elseAct}
	}
	return &imast.CompareAction{
		Op: compareOpOf(op), Left: left, Right: right,
		Then: imast.ActionList{then}, Else: elseList, Position: v.Pos,
	}, nil
}

func compareOpOf(op imast.Op) imast.CompareOp {
	switch op {
	case imast.OpEq:
		return imast.CmpEq
	case imast.OpLt:
		return imast.CmpLt
	case imast.OpGt:
		return imast.CmpGt
	case imast.OpLe:
		return imast.CmpLe
	case imast.OpGe:
		return imast.CmpGe
	default:
		return imast.CmpEq
	}
}

func (l *Loader) parseCond(v desctree.Value, tail []desctree.Value) (imast.Action, error) {
	clauses := make([]imast.CondClause, 0, len(tail))
	for _, c := range tail {
		if len(c.Items) == 0 {
			return nil, l.errAt(errors.Validate, c.Pos, "cond clause must be (expr actions…)")
		}
		test, err := l.parseExpr(c.Items[0])
		if err != nil {
			return nil, err
		}
		actions, err := l.parseActionList(c.Items[1:])
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, imast.CondClause{Test: test, Actions: actions})
	}
	return &imast.CondAction{Clauses: clauses, Position: v.Pos}, nil
}
