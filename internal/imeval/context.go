// Package imeval implements the action interpreter: the expression
// evaluator and the action primitives of the input-method description
// language, executed against a per-session Context.
package imeval

import (
	"github.com/mike-fabian/m17n-lib-sub004/internal/imloader"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imtext"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imtrie"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

// SurroundingText is the host callback contract for fetching and
// deleting text around the caret in the *host* application, outside the
// engine's own preedit buffer.
type SurroundingText interface {
	// GetSurroundingText returns up to beforeMax runes before the caret and
	// up to afterMax runes after it.
	GetSurroundingText(beforeMax, afterMax int) (before, after []rune, err error)
	// DeleteSurroundingText removes `before` runes before and `after`
	// runes after the caret in the host's own text, not in preedit.
	DeleteSurroundingText(before, after int) error
}

// ChangeFlags records which observables the last filter call touched.
type ChangeFlags struct {
	Preedit    bool
	Status     bool
	Candidates bool
}

func (f *ChangeFlags) Clear() { *f = ChangeFlags{} }

// Context is the per-session mutable state, shared by the interpreter
// (this package) and the filter-loop driver (package imctx).
type Context struct {
	Def      *imloader.InputMethodDef
	Registry *keysym.Registry

	State     *imloader.State
	PrevState *imloader.State
	Map       *imtrie.Node

	Keys         []keysym.Symbol
	KeyHead      int
	StateKeyHead int

	Preedit      *imtext.Text
	PreeditSaved *imtext.Text
	CursorPos    int
	StatePos     int

	Markers map[string]int
	Vars    map[string]int

	// Produced accumulates committed text awaiting `lookup`. It is an
	// imtext.Text rather than a plain buffer so the driver can attach a
	// language property over each committed span.
	Produced *imtext.Text

	CandidateList  *imtext.CandidateList
	CandidateIndex int
	CandidateFrom  int
	CandidateTo    int
	CandidateShow  bool

	Status string

	// CandidatesCharset names the charset candidates are filtered against
	// when attaching a candidate list. Empty means no filtering.
	CandidatesCharset string

	PrecedingText []rune
	FollowingText []rune

	Active bool

	// SpotX/SpotY cache the host-reported caret position from set_spot;
	// the engine never reads them itself.
	SpotX, SpotY int

	Changed ChangeFlags

	KeyUnhandled bool

	Surrounding SurroundingText
}

// NewContext initializes a Context for a compiled definition, applying
// variable defaults. It runs no module init callbacks, and neither does
// pkg/im's CreateIC: modules are only reached through `call` actions.
func NewContext(def *imloader.InputMethodDef, reg *keysym.Registry) *Context {
	ctx := &Context{
		Def:      def,
		Registry: reg,
		Markers:  make(map[string]int),
		Vars:     make(map[string]int),
		Preedit:  imtext.New(),
		Produced: imtext.New(),
		Active:   true,
	}
	for name, schema := range def.Variables {
		ctx.Vars[name] = schema.Default
	}
	init := def.InitialState()
	if init != nil {
		ctx.State = init
		ctx.Map = init.Root
		ctx.Status = statusOf(init, def)
	}
	ctx.PreeditSaved = ctx.Preedit.Clone()
	return ctx
}

func statusOf(st *imloader.State, def *imloader.InputMethodDef) string {
	if st != nil && st.Title != "" {
		return st.Title
	}
	return def.Title
}

// Reset shifts to the initial state, drops pending keys, and clears
// markers/produced/preedit/candidates/status without committing
// anything.
func (ctx *Context) Reset() {
	init := ctx.Def.InitialState()
	ctx.State = init
	ctx.PrevState = nil
	if init != nil {
		ctx.Map = init.Root
		ctx.Status = statusOf(init, ctx.Def)
	}
	ctx.Keys = nil
	ctx.KeyHead = 0
	ctx.StateKeyHead = 0
	ctx.Preedit = imtext.New()
	ctx.PreeditSaved = imtext.New()
	ctx.CursorPos = 0
	ctx.StatePos = 0
	for k := range ctx.Markers {
		delete(ctx.Markers, k)
	}
	ctx.Produced = imtext.New()
	ctx.CandidateList = nil
	ctx.CandidateIndex = 0
	ctx.CandidateFrom, ctx.CandidateTo = 0, 0
	ctx.CandidateShow = false
	ctx.Changed = ChangeFlags{Preedit: true, Status: true, Candidates: true}
	ctx.KeyUnhandled = false
}

// Toggle flips whether this context is actively converting keys.
func (ctx *Context) Toggle() {
	ctx.Active = !ctx.Active
}

// TakeProduced returns and clears the committed text awaiting `lookup`;
// ownership of the text transfers to the caller.
func (ctx *Context) TakeProduced() string {
	s := ctx.Produced.String()
	ctx.Produced = imtext.New()
	return s
}

// AttachProducedLanguage tags the whole of the currently buffered
// produced text with the input method's language as a character
// property, so hosts can tell which script a committed span came from.
func (ctx *Context) AttachProducedLanguage(lang string) {
	if ctx.Produced.IsEmpty() || lang == "" {
		return
	}
	ctx.Produced.CharProperty(0, ctx.Produced.Len(), "language", lang)
}
