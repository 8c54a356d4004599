// Package snapshot wraps the go-snaps setup shared by the engine's
// golden-output tests: compile a description, run a key scenario, and
// snapshot the observable trace or the compiled definition's structure.
package snapshot

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imctx"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imeval"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imloader"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imtrie"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

// CompileDef parses and loads source, failing t on any error.
func CompileDef(t *testing.T, source string) (*imloader.InputMethodDef, *keysym.Registry) {
	t.Helper()
	reg := keysym.NewRegistry()
	tree, err := desctree.Parse(source, "snapshot.mim")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	loader := imloader.NewLoader(reg, nil)
	def, err := loader.Load(tree, source, "snapshot.mim")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return def, reg
}

// NewContext compiles source and binds a fresh input context to it.
func NewContext(t *testing.T, source string) (*imeval.Context, *keysym.Registry) {
	t.Helper()
	def, reg := CompileDef(t, source)
	return imeval.NewContext(def, reg), reg
}

// MatchFilterTrace feeds keys into a context compiled from source and
// snapshots one line of observables per key.
func MatchFilterTrace(t *testing.T, source string, keys ...string) {
	t.Helper()
	ctx, reg := NewContext(t, source)
	var b strings.Builder
	for _, k := range keys {
		res := imctx.Filter(ctx, reg.Intern(k))
		fmt.Fprintf(&b, "key=%-10s consumed=%-5v preedit=%q cursor=%d",
			k, res.Consumed, ctx.Preedit.String(), ctx.CursorPos)
		if ctx.CandidateList != nil {
			fmt.Fprintf(&b, " cand=%d/%d", ctx.CandidateIndex, len(ctx.CandidateList.Items))
		}
		if res.HasOutput {
			fmt.Fprintf(&b, " produced=%q", imctx.Lookup(ctx))
		}
		b.WriteByte('\n')
	}
	snaps.MatchSnapshot(t, b.String())
}

// MatchDefDump snapshots a deterministic structural dump of the compiled
// definition: each state with the key sequences reachable from its root
// map and per-node action counts.
func MatchDefDump(t *testing.T, source string) {
	t.Helper()
	def, reg := CompileDef(t, source)
	var b strings.Builder
	fmt.Fprintf(&b, "title=%q states=%d macros=%d variables=%d\n",
		def.Title, len(def.States), len(def.Macros), len(def.Variables))
	for _, st := range def.States {
		fmt.Fprintf(&b, "state %s title=%q\n", reg.NameOf(st.Name), st.Title)
		for _, line := range trieLines(st.Root, reg) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	snaps.MatchSnapshot(t, b.String())
}

// trieLines renders every non-root node as "key seq [map:N branch:N
// terminal]", sorted so the map-ordered Walk can't flake the snapshot.
func trieLines(root *imtrie.Node, reg *keysym.Registry) []string {
	var lines []string
	root.Walk(func(path []keysym.Symbol, n *imtrie.Node) {
		if len(path) == 0 {
			return
		}
		names := make([]string, len(path))
		for i, s := range path {
			names[i] = reg.NameOf(s)
		}
		var marks []string
		if len(n.MapActions) > 0 {
			marks = append(marks, fmt.Sprintf("map:%d", len(n.MapActions)))
		}
		if len(n.BranchActions) > 0 {
			marks = append(marks, fmt.Sprintf("branch:%d", len(n.BranchActions)))
		}
		if n.IsTerminal() {
			marks = append(marks, "terminal")
		}
		lines = append(lines, strings.Join(names, " ")+"  ["+strings.Join(marks, " ")+"]")
	})
	sort.Strings(lines)
	return lines
}
