package imeval

import (
	"testing"

	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imast"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imloader"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

func loadDef(t *testing.T, src string) (*imloader.InputMethodDef, *keysym.Registry) {
	t.Helper()
	reg := keysym.NewRegistry()
	tree, err := desctree.Parse(src, "test.mim")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	l := imloader.NewLoader(reg, nil)
	def, err := l.Load(tree, src, "test.mim")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return def, reg
}

func TestExecuteLiteralInsertion(t *testing.T) {
	def, reg := loadDef(t, `(
		(map (m ("a" (insert "α"))))
		(state (init (m))))`)
	ctx := NewContext(def, reg)
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("a")).MapActions)
	if ctx.Preedit.String() != "α" {
		t.Fatalf("expected preedit 'α', got %q", ctx.Preedit.String())
	}
	if ctx.CursorPos != 1 {
		t.Fatalf("expected cursor 1, got %d", ctx.CursorPos)
	}
}

func TestExecuteMarkAndArithmetic(t *testing.T) {
	def, reg := loadDef(t, `(
		(map (m ("a" (insert "x") (mark start) (insert "yz") (set len (- @= start)))))
		(state (init (m))))`)
	ctx := NewContext(def, reg)
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("a")).MapActions)
	if ctx.Preedit.String() != "xyz" {
		t.Fatalf("expected 'xyz', got %q", ctx.Preedit.String())
	}
	if ctx.Markers["start"] != 1 {
		t.Fatalf("expected marker start=1, got %d", ctx.Markers["start"])
	}
	if ctx.Vars["len"] != 2 {
		t.Fatalf("expected len=2, got %d", ctx.Vars["len"])
	}
}

func TestExecuteCompareActionNestedForm(t *testing.T) {
	def, reg := loadDef(t, `(
		(map (m
			("1" (set x 1))
			("2" (set x 2))
			("=" ((< x 2) (insert "small") (insert "big")))))
		(state (init (m))))`)
	ctx := NewContext(def, reg)
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("1")).MapActions)
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("=")).MapActions)
	if ctx.Preedit.String() != "small" {
		t.Fatalf("expected 'small' for x=1, got %q", ctx.Preedit.String())
	}

	def2, reg2 := loadDef(t, `(
		(map (m
			("1" (set x 1))
			("2" (set x 2))
			("=" ((< x 2) (insert "small") (insert "big")))))
		(state (init (m))))`)
	ctx2 := NewContext(def2, reg2)
	ExecuteTopLevel(ctx2, def2.InitialState().Root.Child(reg2.Intern("2")).MapActions)
	ExecuteTopLevel(ctx2, def2.InitialState().Root.Child(reg2.Intern("=")).MapActions)
	if ctx2.Preedit.String() != "big" {
		t.Fatalf("expected 'big' for x=2, got %q", ctx2.Preedit.String())
	}
}

func TestExecuteCandidateSelectionWithGroupWrap(t *testing.T) {
	def, reg := loadDef(t, `(
		(map (m ("c" (insert (("one" "two") ("three" "four"))))))
		(state (init (m))))`)
	ctx := NewContext(def, reg)
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("c")).MapActions)
	if ctx.Preedit.String() != "one" || ctx.CandidateIndex != 0 {
		t.Fatalf("expected 'one'/0 after insert, got %q/%d", ctx.Preedit.String(), ctx.CandidateIndex)
	}

	execSelect(ctx, selectAction("@+"))
	if ctx.Preedit.String() != "two" || ctx.CandidateIndex != 1 {
		t.Fatalf("expected 'two'/1 after @+, got %q/%d", ctx.Preedit.String(), ctx.CandidateIndex)
	}

	execSelect(ctx, selectAction("@]"))
	if ctx.Preedit.String() != "three" || ctx.CandidateIndex != 2 {
		t.Fatalf("expected 'three'/2 after @], got %q/%d", ctx.Preedit.String(), ctx.CandidateIndex)
	}

	execSelect(ctx, selectAction("@["))
	if ctx.Preedit.String() != "two" || ctx.CandidateIndex != 1 {
		t.Fatalf("expected 'two'/1 after @[, got %q/%d", ctx.Preedit.String(), ctx.CandidateIndex)
	}

	execSelect(ctx, selectAction("@+"))
	execSelect(ctx, selectAction("@+"))
	if ctx.Preedit.String() != "four" || ctx.CandidateIndex != 3 {
		t.Fatalf("expected 'four'/3, got %q/%d", ctx.Preedit.String(), ctx.CandidateIndex)
	}

	execSelect(ctx, selectAction("@+"))
	if ctx.CandidateIndex != 0 {
		t.Fatalf("expected @+ past the last candidate to wrap to index 0, got %d", ctx.CandidateIndex)
	}
}

func TestExecutePushbackRewindsKeyHead(t *testing.T) {
	def, reg := loadDef(t, `(
		(map (m ("x" (pushback 1) (insert "X"))))
		(state (init (m))))`)
	ctx := NewContext(def, reg)
	ctx.Keys = []keysym.Symbol{reg.Intern("x")}
	ctx.KeyHead = 1
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("x")).MapActions)
	if ctx.KeyHead != 0 {
		t.Fatalf("expected key_head rewound to 0, got %d", ctx.KeyHead)
	}
	if ctx.Preedit.String() != "X" {
		t.Fatalf("expected 'X', got %q", ctx.Preedit.String())
	}
}

func TestExecuteUndoCrossingCommit(t *testing.T) {
	def, reg := loadDef(t, `(
		(map (m ("a" (insert "x")) ("b" (commit) (insert "y") (undo))))
		(state (init (m))))`)
	ctx := NewContext(def, reg)
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("a")).MapActions)
	ctx.Keys = []keysym.Symbol{reg.Intern("a"), reg.Intern("b")}
	ctx.KeyHead = 2
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("b")).MapActions)
	if !ctx.Preedit.IsEmpty() {
		t.Fatalf("expected preedit cleared by undo, got %q", ctx.Preedit.String())
	}
	if ctx.Produced.String() == "" {
		t.Fatal("expected commit to have appended to produced before undo")
	}
}

func TestExecuteUnhandleCommitsFirst(t *testing.T) {
	def, reg := loadDef(t, `(
		(map (m ("a" (insert "x") (unhandle))))
		(state (init (m))))`)
	ctx := NewContext(def, reg)
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("a")).MapActions)
	if !ctx.KeyUnhandled {
		t.Fatal("expected KeyUnhandled to be set")
	}
	if ctx.TakeProduced() != "x" {
		t.Fatalf("expected 'x' committed before unhandle, got %q", ctx.Produced.String())
	}
}

func TestDeleteAtStartOnEmptyPreeditIsNoOp(t *testing.T) {
	def, reg := loadDef(t, `(
		(map (m ("a" (delete @<))))
		(state (init (m))))`)
	ctx := NewContext(def, reg)
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("a")).MapActions)
	if !ctx.Preedit.IsEmpty() {
		t.Fatalf("expected no-op, got %q", ctx.Preedit.String())
	}
	if ctx.KeyUnhandled {
		t.Fatal("did not expect an unhandled fault")
	}
}

func TestDivisionByRuntimeZeroSaturates(t *testing.T) {
	def, reg := loadDef(t, `(
		(map (m ("a" (div x y))))
		(state (init (m))))`)
	ctx := NewContext(def, reg)
	ctx.Vars["x"] = 10
	ctx.Vars["y"] = 0
	ExecuteTopLevel(ctx, def.InitialState().Root.Child(reg.Intern("a")).MapActions)
	if ctx.Vars["x"] != 0 {
		t.Fatalf("expected division by runtime zero to saturate to 0, got %d", ctx.Vars["x"])
	}
}

// selectAction builds a SelectAction wrapping a bare @-form symbol, the
// way the loader would parse `(select @+)`.
func selectAction(name string) *imast.SelectAction {
	return &imast.SelectAction{Index: &imast.SymbolRef{Name: name}}
}
