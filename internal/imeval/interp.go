package imeval

import (
	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imast"
	"github.com/mike-fabian/m17n-lib-sub004/internal/immodule"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imloader"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imtext"
)

// ExecuteTopLevel runs actions as one top-level action-list call (map- or
// branch-actions fired by the driver) and then re-derives the candidate
// observables. It never returns an error: any evaluator or action
// fault is logged and turned into ctx.KeyUnhandled, the same way the
// driver treats a literal `unhandle` action.
func ExecuteTopLevel(ctx *Context, actions imast.ActionList) {
	before := ctx.snapshotCandidates()
	Execute(ctx, actions)
	ctx.recomputeCandidates(before)
}

// Execute runs actions in order, stopping at the first one that sets
// ctx.KeyUnhandled (via an explicit `unhandle` or a recovered fault).
func Execute(ctx *Context, actions imast.ActionList) {
	for _, a := range actions {
		execAction(ctx, a)
		if ctx.KeyUnhandled {
			return
		}
	}
}

// fail logs a recoverable interpreter fault and marks the current
// top-level call unhandled, matching the engine-wide policy of turning
// evaluation faults into an unconsumed key rather than a panic.
func (ctx *Context) fail(err error) {
	errors.LogInternal("imeval: %v", err)
	ctx.KeyUnhandled = true
}

func execAction(ctx *Context, a imast.Action) {
	switch n := a.(type) {
	case *imast.InsertAction:
		execInsert(ctx, n)
	case *imast.DeleteAction:
		execDelete(ctx, n)
	case *imast.MoveAction:
		execMove(ctx, n)
	case *imast.MarkAction:
		execMark(ctx, n)
	case *imast.PushbackAction:
		execPushback(ctx, n)
	case *imast.UndoAction:
		execUndo(ctx, n)
	case *imast.CommitAction:
		ctx.commit()
	case *imast.UnhandleAction:
		ctx.commit()
		ctx.KeyUnhandled = true
	case *imast.ShiftAction:
		execShift(ctx, n)
	case *imast.SelectAction:
		execSelect(ctx, n)
	case *imast.ShowAction:
		ctx.CandidateShow = true
		ctx.Changed.Candidates = true
	case *imast.HideAction:
		ctx.CandidateShow = false
		ctx.Changed.Candidates = true
	case *imast.CallAction:
		execCall(ctx, n)
	case *imast.AssignAction:
		execAssign(ctx, n)
	case *imast.CompareAction:
		execCompare(ctx, n)
	case *imast.CondAction:
		execCond(ctx, n)
	case *imast.MacroCallAction:
		execMacroCall(ctx, n)
	default:
		ctx.fail(&undefinedSymbolError{"unknown action " + a.String()})
	}
}

func execInsert(ctx *Context, n *imast.InsertAction) {
	switch {
	case n.Text != nil:
		ctx.insertText(*n.Text)
	case n.Int != nil:
		ctx.insertText(string(rune(*n.Int)))
	case n.Symbol != "":
		v, err := ctx.resolveSymbol(n.Symbol)
		if err != nil {
			ctx.fail(err)
			return
		}
		ctx.insertText(string(rune(v)))
	case n.Groups != nil:
		ctx.attachCandidates(ctx.CursorPos, n.Groups)
	}
}

func (ctx *Context) insertText(s string) {
	runes := []rune(s)
	ctx.Preedit.InsertRunes(ctx.CursorPos, runes)
	ctx.CursorPos += len(runes)
	ctx.Changed.Preedit = true
}

// surroundingSymbol reports the @-N/@+N marker name if target is exactly
// that bare symbol form, for delete's special surrounding-text path.
func surroundingSymbol(e imast.Expr) (name string, ok bool) {
	ref, isRef := e.(*imast.SymbolRef)
	if !isRef {
		return "", false
	}
	_, _, isSurrounding := parseSurroundingMarker(ref.Name)
	return ref.Name, isSurrounding
}

func execDelete(ctx *Context, n *imast.DeleteAction) {
	if name, ok := surroundingSymbol(n.Target); ok {
		count, before, _ := parseSurroundingMarker(name)
		if ctx.Surrounding == nil {
			ctx.fail(&undefinedSymbolError{"surrounding-text unavailable"})
			return
		}
		var err error
		if before {
			err = ctx.Surrounding.DeleteSurroundingText(count, 0)
		} else {
			err = ctx.Surrounding.DeleteSurroundingText(0, count)
		}
		if err != nil {
			ctx.fail(err)
		}
		return
	}
	target, err := Eval(ctx, n.Target)
	if err != nil {
		ctx.fail(err)
		return
	}
	from, to := ctx.CursorPos, target
	if from > to {
		from, to = to, from
	}
	if from < 0 {
		from = 0
	}
	if to > ctx.Preedit.Len() {
		to = ctx.Preedit.Len()
	}
	if from >= to {
		return
	}
	ctx.Preedit.DeleteRange(from, to)
	// Markers inside the deleted span move to its start; later ones shift left.
	for name, m := range ctx.Markers {
		switch {
		case m >= to:
			ctx.Markers[name] = m - (to - from)
		case m > from:
			ctx.Markers[name] = from
		}
	}
	ctx.CursorPos = from
	ctx.Changed.Preedit = true
}

func execMove(ctx *Context, n *imast.MoveAction) {
	target, err := Eval(ctx, n.Target)
	if err != nil {
		ctx.fail(err)
		return
	}
	if target < 0 {
		target = 0
	}
	if target > ctx.Preedit.Len() {
		target = ctx.Preedit.Len()
	}
	ctx.CursorPos = target
}

func execMark(ctx *Context, n *imast.MarkAction) {
	if len(n.Marker) > 0 && n.Marker[0] == '@' {
		return // predefined @-markers cannot be reassigned
	}
	ctx.Markers[n.Marker] = ctx.CursorPos
}

func execPushback(ctx *Context, n *imast.PushbackAction) {
	if n.N != nil {
		if *n.N > 0 {
			ctx.KeyHead -= *n.N
		} else {
			ctx.KeyHead = *n.N
		}
		if ctx.KeyHead < 0 {
			ctx.KeyHead = 0
		}
		if ctx.KeyHead > len(ctx.Keys) {
			ctx.KeyHead = len(ctx.Keys)
		}
	}
	if n.Keys != nil {
		start := ctx.KeyHead - 1
		if start < 0 {
			start = 0
		}
		for i, name := range n.Keys {
			sym := ctx.Registry.Intern(name)
			if start+i < len(ctx.Keys) {
				ctx.Keys[start+i] = sym
			} else {
				ctx.Keys = append(ctx.Keys, sym)
			}
		}
		ctx.KeyHead = start
	}
}

func execUndo(ctx *Context, n *imast.UndoAction) {
	used := len(ctx.Keys)
	delta := used - 2
	if n.Delta != nil {
		if *n.Delta < 0 {
			delta = used + *n.Delta
		} else {
			delta = *n.Delta
		}
	}
	if delta < 0 {
		delta = 0
	}
	if delta > used {
		delta = used
	}

	// Truncate the key ring to the kept prefix; the filter loop re-feeds
	// it from the start against a cleared preedit.
	ctx.Keys = ctx.Keys[:delta]
	ctx.KeyHead = 0
	ctx.StateKeyHead = 0
	ctx.Preedit = imtext.New()
	ctx.PreeditSaved = imtext.New()
	ctx.CursorPos = 0
	ctx.StatePos = 0
	ctx.CandidateList = nil
	ctx.CandidateIndex, ctx.CandidateFrom, ctx.CandidateTo = 0, 0, 0
	ctx.Changed.Preedit = true

	init := ctx.Def.InitialState()
	if init != nil {
		ctx.ShiftTo(ctx.Registry.NameOf(init.Name))
	}
}

func (ctx *Context) commit() {
	if !ctx.Preedit.IsEmpty() {
		ctx.Produced.InsertRunes(ctx.Produced.Len(), []rune(ctx.Preedit.String()))
	}
	ctx.Preedit = imtext.New()
	ctx.CursorPos = 0
	for k := range ctx.Markers {
		delete(ctx.Markers, k)
	}
	ctx.CandidateList = nil
	ctx.CandidateIndex, ctx.CandidateFrom, ctx.CandidateTo = 0, 0, 0
	ctx.Changed.Preedit = true
	ctx.Changed.Candidates = true
	ctx.Keys = ctx.Keys[min(ctx.KeyHead, len(ctx.Keys)):]
	ctx.KeyHead = 0
	ctx.StateKeyHead = 0
}

func execShift(ctx *Context, n *imast.ShiftAction) {
	ctx.ShiftTo(n.State)
}

// ShiftTo resolves name (or "t" for the previous state, or falls back
// to the initial state), enters it, and runs its root map actions, if
// any. Entering the initial state forces a commit. Exported so the
// driver (package imctx) can reuse it for the implicit end-of-loop
// shift.
func (ctx *Context) ShiftTo(name string) {
	ctx.shiftTo(name, true)
}

// ReenterState re-enters the current state after a terminal trie node:
// it refreshes the per-state snapshots and re-runs the root map_actions
// the way ShiftTo does, but never commits, so a completed sequence stays
// in preedit until a later key misses the trie.
func (ctx *Context) ReenterState() {
	ctx.shiftTo(ctx.Registry.NameOf(ctx.State.Name), false)
}

func (ctx *Context) shiftTo(name string, allowCommit bool) {
	var target *imloader.State
	switch name {
	case "t":
		if ctx.PrevState == nil {
			return
		}
		target = ctx.PrevState
	default:
		if st, ok := ctx.Def.StateByName(ctx.Registry, name); ok {
			target = st
		}
	}
	if target == nil {
		target = ctx.Def.InitialState()
	}
	if target == nil {
		return
	}
	ctx.PrevState = ctx.State
	ctx.State = target
	ctx.Map = target.Root
	ctx.Status = statusOf(target, ctx.Def)
	ctx.Changed.Status = true

	if allowCommit && target == ctx.Def.InitialState() {
		ctx.commit()
	}

	// Snapshots are taken after any commit so preedit_saved never holds
	// text the commit already flushed.
	ctx.StatePos = ctx.CursorPos
	ctx.PreeditSaved = ctx.Preedit.Clone()
	ctx.StateKeyHead = ctx.KeyHead

	if target.Root.MapActions != nil {
		Execute(ctx, target.Root.MapActions)
	}
}

func execSelect(ctx *Context, n *imast.SelectAction) {
	if ctx.CandidateList == nil {
		return
	}
	if ref, ok := n.Index.(*imast.SymbolRef); ok {
		switch ref.Name {
		case "@<":
			ctx.selectCandidate(0)
			return
		case "@>":
			ctx.selectCandidate(len(ctx.CandidateList.Items) - 1)
			return
		case "@-":
			ctx.selectCandidate(ctx.CandidateIndex - 1)
			return
		case "@+":
			ctx.selectCandidate(ctx.CandidateIndex + 1)
			return
		case "@=":
			ctx.selectCandidate(ctx.CandidateIndex)
			return
		case "@[":
			ctx.selectGroup(false)
			return
		case "@]":
			ctx.selectGroup(true)
			return
		}
	}
	idx, err := Eval(ctx, n.Index)
	if err != nil {
		ctx.fail(err)
		return
	}
	ctx.selectCandidate(idx)
}

func execCall(ctx *Context, n *imast.CallAction) {
	mod, ok := ctx.Def.Modules[n.Module]
	if !ok {
		ctx.fail(&undefinedSymbolError{"module " + n.Module})
		return
	}
	fn, ok := mod.Lookup(n.Function)
	if !ok {
		ctx.fail(&undefinedSymbolError{"function " + n.Function})
		return
	}
	args := make(immodule.PList, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(ctx, a)
		if err != nil {
			ctx.fail(err)
			return
		}
		args[i] = immodule.IntValue(v)
	}
	result, err := fn(args)
	if err != nil {
		ctx.fail(err)
		return
	}
	Execute(ctx, plistToActions(result))
}

// plistToActions interprets a module's returned plist as a nested action
// list: each text/int becomes an insert, and the symbols
// "commit"/"unhandle" become those actions. Anything else is
// ignored rather than rejected, since a module is an external
// collaborator whose exact vocabulary isn't under load-time validation.
func plistToActions(pl immodule.PList) imast.ActionList {
	var out imast.ActionList
	for _, v := range pl {
		switch v.Kind {
		case immodule.KindText:
			s := v.Text
			out = append(out, &imast.InsertAction{Text: &s})
		case immodule.KindInt:
			n := v.Int
			out = append(out, &imast.InsertAction{Int: &n})
		case immodule.KindSymbol:
			switch v.Symbol {
			case "commit":
				out = append(out, &imast.CommitAction{})
			case "unhandle":
				out = append(out, &imast.UnhandleAction{})
			}
		}
	}
	return out
}

func execAssign(ctx *Context, n *imast.AssignAction) {
	rhs, err := Eval(ctx, n.Value)
	if err != nil {
		ctx.fail(err)
		return
	}
	cur := ctx.Vars[n.Var]
	switch n.Op {
	case imast.AssignSet:
		cur = rhs
	case imast.AssignAdd:
		cur += rhs
	case imast.AssignSub:
		cur -= rhs
	case imast.AssignMul:
		cur *= rhs
	case imast.AssignDiv:
		if rhs == 0 {
			errors.LogInternal("imeval: division by zero in div %s", n.Var)
			cur = 0 // division by a runtime zero saturates
		} else {
			cur /= rhs
		}
	}
	ctx.Vars[n.Var] = cur
}

func execCompare(ctx *Context, n *imast.CompareAction) {
	lhs, err := Eval(ctx, n.Left)
	if err != nil {
		ctx.fail(err)
		return
	}
	rhs, err := Eval(ctx, n.Right)
	if err != nil {
		ctx.fail(err)
		return
	}
	var ok bool
	switch n.Op {
	case imast.CmpEq:
		ok = lhs == rhs
	case imast.CmpLt:
		ok = lhs < rhs
	case imast.CmpGt:
		ok = lhs > rhs
	case imast.CmpLe:
		ok = lhs <= rhs
	case imast.CmpGe:
		ok = lhs >= rhs
	}
	if ok {
		Execute(ctx, n.Then)
	} else if n.Else != nil {
		Execute(ctx, n.Else)
	}
}

func execCond(ctx *Context, n *imast.CondAction) {
	for _, clause := range n.Clauses {
		v, err := Eval(ctx, clause.Test)
		if err != nil {
			ctx.fail(err)
			return
		}
		if v != 0 {
			Execute(ctx, clause.Actions)
			return
		}
	}
}

func execMacroCall(ctx *Context, n *imast.MacroCallAction) {
	macro, ok := ctx.Def.Macros[n.Name]
	if !ok {
		ctx.fail(&undefinedSymbolError{"macro " + n.Name})
		return
	}
	Execute(ctx, macro.Body)
}
