package imctx

import (
	"testing"

	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imeval"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imloader"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

func load(t *testing.T, src string) (*imeval.Context, *keysym.Registry) {
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
	return imeval.NewContext(def, reg), reg
}

func TestFilterLiteralInsertion(t *testing.T) {
	ctx, reg := load(t, `(
		(map (greek ("a" (insert "α"))))
		(state (init (greek))))`)
	res := Filter(ctx, reg.Intern("a"))
	if !res.Consumed {
		t.Fatal("expected key to be consumed")
	}
	if ctx.Preedit.String() != "α" {
		t.Fatalf("expected preedit 'α', got %q", ctx.Preedit.String())
	}
}

func TestFilterTwoKeyCombiningSequence(t *testing.T) {
	ctx, reg := load(t, `(
		(map (kana ((k a) (insert "か"))))
		(state (init (kana))))`)
	Filter(ctx, reg.Intern("k"))
	if ctx.Preedit.String() != "k" {
		t.Fatalf("expected auto-inserted 'k' mid-sequence, got %q", ctx.Preedit.String())
	}
	res := Filter(ctx, reg.Intern("a"))
	if !res.Consumed {
		t.Fatal("expected second key to be consumed")
	}
	if ctx.Preedit.String() != "か" {
		t.Fatalf("expected 'か' after completing the sequence, got %q", ctx.Preedit.String())
	}
}

func TestFilterUnmatchedKeyAtRootIsUnconsumed(t *testing.T) {
	ctx, reg := load(t, `(
		(map (m ("a" (insert "x"))))
		(state (init (m))))`)
	res := Filter(ctx, reg.Intern("z"))
	if res.Consumed {
		t.Fatal("expected unmatched root key to be unconsumed")
	}
}

func TestFilterUnhandledKeyIsDroppedFromRing(t *testing.T) {
	ctx, reg := load(t, `(
		(map (m ("a" (insert "x"))))
		(state (init (m))))`)
	Filter(ctx, reg.Intern("z"))
	res := Filter(ctx, reg.Intern("a"))
	if !res.Consumed {
		t.Fatal("expected 'a' to be consumed after the dropped 'z'")
	}
	if ctx.Preedit.String() != "x" {
		t.Fatalf("expected 'x', got %q", ctx.Preedit.String())
	}
}

func TestFilterUnmatchedKeyCommitsPendingPreedit(t *testing.T) {
	ctx, reg := load(t, `(
		(map (m ("a" (insert "α"))))
		(state (init (m))))`)
	res := Filter(ctx, reg.Intern("a"))
	if !res.Consumed || res.HasOutput {
		t.Fatalf("expected 'a' consumed with nothing produced, got %+v", res)
	}
	res = Filter(ctx, reg.Intern("Return"))
	if !res.HasOutput {
		t.Fatal("expected the unmatched key to flush the preedit")
	}
	if got := Lookup(ctx); got != "α" {
		t.Fatalf("expected committed 'α', got %q", got)
	}
	if !ctx.Preedit.IsEmpty() {
		t.Fatalf("expected empty preedit after the commit, got %q", ctx.Preedit.String())
	}
}

func TestFilterShiftToStateCommitsOnReturnToInitial(t *testing.T) {
	ctx, reg := load(t, `(
		(map (m ("a" (insert "x") (shift other))))
		(map (back ("b" (shift init))))
		(state
			(init (m))
			(other (back))))`)
	Filter(ctx, reg.Intern("a"))
	if ctx.Preedit.String() != "x" {
		t.Fatalf("expected preedit to carry 'x' into the other state, got %q", ctx.Preedit.String())
	}
	Filter(ctx, reg.Intern("b"))
	if ctx.TakeProduced() != "x" {
		t.Fatal("expected shifting back to init to force a commit of 'x'")
	}
}

func TestFilterIterationCapResetsOnPushbackLoop(t *testing.T) {
	ctx, reg := load(t, `(
		(map (m ("a" (pushback 1))))
		(state (init (m))))`)
	res := Filter(ctx, reg.Intern("a"))
	if res.Consumed {
		t.Fatal("expected the 100-iteration cap to mark the key unhandled")
	}
	if !ctx.Preedit.IsEmpty() {
		t.Fatal("expected Reset to have cleared preedit after the cap tripped")
	}
}
