package imctx

import "github.com/mike-fabian/m17n-lib-sub004/internal/imeval"

// Reset discards all pending input and returns ctx to its initial state
// without committing anything.
func Reset(ctx *imeval.Context) { ctx.Reset() }

// Toggle flips whether ctx is actively converting keys.
func Toggle(ctx *imeval.Context) { ctx.Toggle() }

// SetSpot records the host's current caret position, for hosts that want
// to position an on-screen preedit window. The engine itself has no
// notion of screen coordinates; this simply stores host-supplied values
// for the host's own later use.
func SetSpot(ctx *imeval.Context, x, y int) {
	ctx.SpotX, ctx.SpotY = x, y
}

// Lookup drains ctx's committed text for delivery to the host.
func Lookup(ctx *imeval.Context) string { return ctx.TakeProduced() }
