package imloader

import (
	"testing"

	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imast"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

func mustLoad(t *testing.T, reg *keysym.Registry, src string) *InputMethodDef {
	t.Helper()
	tree, err := desctree.Parse(src, "test.mim")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	l := NewLoader(reg, nil)
	def, err := l.Load(tree, src, "test.mim")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	return def
}

func TestLoadLiteralInsertion(t *testing.T) {
	reg := keysym.NewRegistry()
	def := mustLoad(t, reg, `(
		(title "Greek")
		(map (greek ("a" (insert "α"))))
		(state (init (greek))))`)

	init := def.InitialState()
	if init == nil {
		t.Fatal("no initial state")
	}
	a := reg.Intern("a")
	node := init.Root.Child(a)
	if node == nil {
		t.Fatal("expected a trie node for key 'a'")
	}
	if len(node.MapActions) != 1 {
		t.Fatalf("expected one map action, got %d", len(node.MapActions))
	}
	ins, ok := node.MapActions[0].(*imast.InsertAction)
	if !ok || ins.Text == nil || *ins.Text != "α" {
		t.Fatalf("unexpected action: %+v", node.MapActions[0])
	}
}

func TestLoadWithoutStateFails(t *testing.T) {
	reg := keysym.NewRegistry()
	tree, _ := desctree.Parse(`((title "X"))`, "")
	l := NewLoader(reg, nil)
	if _, err := l.Load(tree, "", ""); err == nil {
		t.Fatal("expected error for missing state section")
	}
}

func TestLoadUndefinedMacroFails(t *testing.T) {
	reg := keysym.NewRegistry()
	tree, _ := desctree.Parse(`(
		(map (m ("a" (does-not-exist))))
		(state (init (m))))`, "")
	l := NewLoader(reg, nil)
	if _, err := l.Load(tree, "", ""); err == nil {
		t.Fatal("expected error for undefined macro")
	}
}

func TestLoadMacroForwardReferenceAllowed(t *testing.T) {
	reg := keysym.NewRegistry()
	// macro "b" calls macro "a" defined later in the same description.
	def := mustLoad(t, reg, `(
		(macro (b (a)) (a (insert "x")))
		(map (m ("k" (b))))
		(state (init (m))))`)
	if def == nil {
		t.Fatal("expected successful load")
	}
}

func TestLoadVersionTooOldRejected(t *testing.T) {
	reg := keysym.NewRegistry()
	tree, _ := desctree.Parse(`(
		(version "99.0.0")
		(map (m ("a" (insert "x"))))
		(state (init (m))))`, "")
	l := NewLoader(reg, nil)
	if _, err := l.Load(tree, "", ""); err == nil {
		t.Fatal("expected version-too-old error")
	}
}

func TestLoadNilAndTBranches(t *testing.T) {
	reg := keysym.NewRegistry()
	def := mustLoad(t, reg, `(
		(state (init (nil (unhandle)) (t (insert "hi")))))`)
	init := def.InitialState()
	if len(init.Root.BranchActions) != 1 {
		t.Fatalf("expected one branch action on root, got %d", len(init.Root.BranchActions))
	}
	if len(init.Root.MapActions) != 1 {
		t.Fatalf("expected one map action on root, got %d", len(init.Root.MapActions))
	}
}

func TestLoadTwoKeyCombiningSequence(t *testing.T) {
	reg := keysym.NewRegistry()
	def := mustLoad(t, reg, `(
		(map (kana ((k a) (insert "か")) ((k k) (insert "っ"))))
		(state (init (kana))))`)
	init := def.InitialState()
	k := reg.Intern("k")
	node := init.Root.Child(k)
	if node == nil || node.IsTerminal() {
		t.Fatal("expected 'k' to be a non-terminal node with two children")
	}
	if node.MapActions != nil {
		t.Fatal("intermediate node should have no map actions")
	}
	a := reg.Intern("a")
	if node.Child(a) == nil {
		t.Fatal("expected 'k a' path to exist")
	}
}

func TestLoadCompareActionNestedForm(t *testing.T) {
	reg := keysym.NewRegistry()
	def := mustLoad(t, reg, `(
		(map (m
			("1" (set x 1))
			("2" (set x 2))
			("=" ((< x 2) (insert "small") (insert "big")))))
		(state (init (m))))`)
	init := def.InitialState()
	eq := reg.Intern("=")
	node := init.Root.Child(eq)
	if node == nil || len(node.MapActions) != 1 {
		t.Fatalf("expected one map action on '=', got %+v", node)
	}
	cmp, ok := node.MapActions[0].(*imast.CompareAction)
	if !ok {
		t.Fatalf("expected CompareAction, got %T", node.MapActions[0])
	}
	if cmp.Op != imast.CmpLt {
		t.Fatalf("expected <, got %s", cmp.Op)
	}
	if len(cmp.Then) != 1 || len(cmp.Else) != 1 {
		t.Fatalf("expected one then and one else action, got %d/%d", len(cmp.Then), len(cmp.Else))
	}
}

func TestLoadCandidateGroups(t *testing.T) {
	reg := keysym.NewRegistry()
	def := mustLoad(t, reg, `(
		(map (m ("c" (insert (("one" "two") ("three" "four"))))))
		(state (init (m))))`)
	init := def.InitialState()
	c := reg.Intern("c")
	node := init.Root.Child(c)
	ins, ok := node.MapActions[0].(*imast.InsertAction)
	if !ok {
		t.Fatalf("expected InsertAction, got %T", node.MapActions[0])
	}
	if len(ins.Groups) != 2 || len(ins.Groups[0]) != 2 || ins.Groups[1][1] != "four" {
		t.Fatalf("unexpected groups: %+v", ins.Groups)
	}
}

func TestLoadPushbackAction(t *testing.T) {
	reg := keysym.NewRegistry()
	def := mustLoad(t, reg, `(
		(map (m ("x" (pushback 1) (insert "X"))))
		(state (init (m))))`)
	init := def.InitialState()
	x := reg.Intern("x")
	node := init.Root.Child(x)
	if len(node.MapActions) != 2 {
		t.Fatalf("expected two actions, got %d", len(node.MapActions))
	}
	pb, ok := node.MapActions[0].(*imast.PushbackAction)
	if !ok || pb.N == nil || *pb.N != 1 {
		t.Fatalf("unexpected pushback action: %+v", node.MapActions[0])
	}
}

func TestLoadDivisionByLiteralZeroRejected(t *testing.T) {
	reg := keysym.NewRegistry()
	tree, _ := desctree.Parse(`(
		(map (m ("a" (div x 0))))
		(state (init (m))))`, "")
	l := NewLoader(reg, nil)
	if _, err := l.Load(tree, "", ""); err == nil {
		t.Fatal("expected error for division by literal zero")
	}
}
