// Package imctx implements the per-context driver: the filter loop that
// walks the map trie one key at a time, and the reset/toggle/lookup
// entry points it shares with the public façade.
package imctx

import (
	"github.com/mike-fabian/m17n-lib-sub004/internal/imeval"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imtrie"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

// maxIterations bounds the inner walk per key, defending against
// pushback/undo loops that never advance key_head.
const maxIterations = 100

// Result is the outcome of one Filter call, expressed as two plain
// booleans rather than the packed return code the public driver surface
// derives from them.
type Result struct {
	// Consumed reports whether the key was absorbed by the input method.
	// false means the host should handle the key itself (e.g. insert it
	// literally or treat it as a command key).
	Consumed bool
	// HasOutput reports whether committed text is ready for `lookup`.
	HasOutput bool
}

// Filter feeds one key into ctx, walking the current state's trie and
// falling through across states until the key ring drains.
func Filter(ctx *imeval.Context, key keysym.Symbol) Result {
	ctx.Keys = append(ctx.Keys, key)
	ctx.Changed.Clear()
	ctx.PrecedingText = nil
	ctx.FollowingText = nil
	ctx.KeyUnhandled = false

	alias := func(s keysym.Symbol) keysym.Symbol { return ctx.Registry.KeyAlias(s) }
	initialRoot := ctx.Def.InitialState().Root

	iterations := 0
	for ctx.KeyHead < len(ctx.Keys) {
		iterations++
		if iterations > maxIterations {
			ctx.Reset()
			ctx.KeyUnhandled = true
			break
		}

		current := ctx.Keys[ctx.KeyHead]
		submap := ctx.Map.LookupOrAlias(current, alias)

		if submap != nil {
			stepInto(ctx, submap)
			continue
		}

		if ctx.Map == initialRoot {
			// The key was not handled: drop it from the ring so the next
			// filter call starts from a clean queue.
			ctx.Keys = append(ctx.Keys[:ctx.KeyHead], ctx.Keys[ctx.KeyHead+1:]...)
			ctx.KeyUnhandled = true
			break
		}
		stepMismatch(ctx)
	}

	// A key that missed the trie flushes whatever sequence had already
	// completed: shifting to the initial state commits the preedit.
	if ctx.KeyUnhandled && ctx.Map == initialRoot && !ctx.Preedit.IsEmpty() {
		ctx.ShiftTo(ctx.Registry.NameOf(ctx.Def.InitialState().Name))
	}

	if !ctx.Produced.IsEmpty() {
		ctx.AttachProducedLanguage(ctx.Def.Language)
	}

	return Result{
		Consumed:  !ctx.KeyUnhandled,
		HasOutput: !ctx.Produced.IsEmpty(),
	}
}

// stepInto enters an existing submap for the current key.
func stepInto(ctx *imeval.Context, submap *imtrie.Node) {
	ctx.Preedit = ctx.PreeditSaved.Clone()
	ctx.CursorPos = ctx.StatePos
	ctx.Changed.Preedit = true
	ctx.KeyHead++
	ctx.Map = submap

	if len(submap.MapActions) > 0 {
		imeval.ExecuteTopLevel(ctx, submap.MapActions)
	} else if !submap.IsTerminal() {
		autoInsertLiterals(ctx)
	}

	if submap.IsTerminal() || ctx.Map != submap {
		if len(submap.BranchActions) > 0 {
			imeval.ExecuteTopLevel(ctx, submap.BranchActions)
		}
		if ctx.Map == submap && ctx.Map != ctx.State.Root {
			ctx.ReenterState()
		}
	}
}

// stepMismatch handles a key with no submap when we are not at the
// initial state's root. The key is not consumed here; after the
// fall-through shifts below, the loop retries it against the new root
// map.
func stepMismatch(ctx *imeval.Context) {
	if ctx.Map != ctx.State.Root {
		if len(ctx.Map.BranchActions) > 0 {
			imeval.ExecuteTopLevel(ctx, ctx.Map.BranchActions)
		}
		if ctx.Map != ctx.State.Root {
			ctx.ReenterState()
		}
		return
	}
	root := ctx.Map
	if len(root.BranchActions) > 0 {
		imeval.ExecuteTopLevel(ctx, root.BranchActions)
	}
	if ctx.Map == root {
		// Branch actions didn't shift anywhere else: fall back to the
		// initial state, committing any pending preedit.
		ctx.ShiftTo(ctx.Registry.NameOf(ctx.Def.InitialState().Name))
	}
}

// autoInsertLiterals inserts the literal characters of the keys consumed
// since entering this state, for single-character key symbols only
// (e.g. typing "k" then "a" down a combining map shows "ka" in preedit
// until the sequence resolves).
func autoInsertLiterals(ctx *imeval.Context) {
	for i := ctx.StateKeyHead; i < ctx.KeyHead; i++ {
		name := ctx.Registry.NameOf(ctx.Keys[i])
		if len([]rune(name)) != 1 {
			continue
		}
		r := []rune(name)
		ctx.Preedit.InsertRunes(ctx.CursorPos, r)
		ctx.CursorPos += len(r)
		ctx.Changed.Preedit = true
	}
}
