package imtrie

import (
	"testing"

	"github.com/mike-fabian/m17n-lib-sub004/internal/imast"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

func TestDeepenCreatesTerminalNode(t *testing.T) {
	reg := keysym.NewRegistry()
	root := NewNode()
	k := reg.Intern("k")
	a := reg.Intern("a")

	n1 := root.Deepen(k)
	if root.IsTerminal() {
		t.Fatal("root should not be terminal after Deepen")
	}
	if !n1.IsTerminal() {
		t.Fatal("n1 should be terminal before it gets a child")
	}
	n1.Deepen(a)
	if n1.IsTerminal() {
		t.Fatal("n1 should not be terminal after it gets a child")
	}
}

func TestLookupOrAliasFallsBackToAlias(t *testing.T) {
	reg := keysym.NewRegistry()
	root := NewNode()
	mx := reg.Intern("M-x")
	child := root.Deepen(mx)
	child.MapActions = imast.ActionList{&imast.CommitAction{}}

	ax := reg.Intern("A-x")
	got := root.LookupOrAlias(ax, reg.KeyAlias)
	if got != child {
		t.Fatal("expected alias lookup to find the M-x child via A-x")
	}
}

func TestMergeFirstDefinedWins(t *testing.T) {
	reg := keysym.NewRegistry()
	dst := NewNode()
	k := reg.Intern("k")
	dstChild := dst.Deepen(k)
	dstChild.MapActions = imast.ActionList{&imast.CommitAction{}}

	src := NewNode()
	srcChild := src.Deepen(k)
	srcChild.MapActions = imast.ActionList{&imast.UnhandleAction{}}

	dst.Merge(src)
	if len(dst.Child(k).MapActions) != 1 {
		t.Fatal("expected exactly one map action")
	}
	if _, ok := dst.Child(k).MapActions[0].(*imast.CommitAction); !ok {
		t.Fatal("first-defined map action should have won")
	}
}
