// Package im is the public driver surface of the input method engine:
// open an input method, create input contexts on it, filter keys, and
// read back preedit, candidates, and committed text. It wires the
// internal loader/interpreter/driver packages together.
package im

import (
	"fmt"

	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imctx"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imdb"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imeval"
	"github.com/mike-fabian/m17n-lib-sub004/internal/immodule"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imloader"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

// Engine owns the process-wide shared resources: the append-only key
// symbol registry and the definition store, both safely shared across
// InputMethods and Contexts.
type Engine struct {
	Registry *keysym.Registry
	Store    imdb.Store
	Modules  immodule.Loader

	loaded map[string]*imloader.InputMethodDef // definition cache, keyed by language+"/"+name
}

func NewEngine(store imdb.Store, modules immodule.Loader) *Engine {
	return &Engine{
		Registry: keysym.NewRegistry(),
		Store:    store,
		Modules:  modules,
		loaded:   make(map[string]*imloader.InputMethodDef),
	}
}

// InputMethod is the handle returned by OpenIM, wrapping one compiled
// InputMethodDef shareable across contexts.
type InputMethod struct {
	engine *Engine
	def    *imloader.InputMethodDef
}

// InputContext is one user session bound to an InputMethod.
type InputContext struct {
	im        *InputMethod
	ctx       *imeval.Context
	callbacks map[string]Callback
}

// Callback is a host hook invoked by the driver, receiving the context
// it fired on. Draw callbacks read the current observables via Observe.
type Callback func(ic *InputContext)

// Callback keys understood by SetCallback. Surrounding-text callbacks
// are typed instead: see SetSurroundingText.
const (
	CallbackPreeditStart   = "preedit-start"
	CallbackPreeditDraw    = "preedit-draw"
	CallbackPreeditDone    = "preedit-done"
	CallbackStatusDraw     = "status-draw"
	CallbackCandidatesDraw = "candidates-draw"
	CallbackToggle         = "toggle"
	CallbackReset          = "reset"
	CallbackSetSpot        = "set-spot"
)

// SetCallback registers cb under one of the Callback* keys, replacing
// any previous registration. Draw callbacks fire after each Filter call
// iff the matching change flag is set; preedit-start/done fire when the
// preedit becomes non-empty/empty across a Filter call.
func (ic *InputContext) SetCallback(key string, cb Callback) {
	if ic.callbacks == nil {
		ic.callbacks = make(map[string]Callback)
	}
	ic.callbacks[key] = cb
}

func (ic *InputContext) fire(key string) {
	if cb, ok := ic.callbacks[key]; ok {
		cb(ic)
	}
}

// OpenIM finds, loads, and compiles the named description, sharing a
// previously compiled definition when available.
func (e *Engine) OpenIM(language, name string) (*InputMethod, error) {
	cacheKey := language + "/" + name
	if def, ok := e.loaded[cacheKey]; ok {
		return &InputMethod{engine: e, def: def}, nil
	}

	tag := imdb.Tag{InputMethod: "input-method", Language: language, Name: name}
	handle, ok := e.Store.Find(tag)
	if !ok {
		return nil, errors.NewLoadError(errors.NotFound, errors.Position{},
			fmt.Sprintf("no input method %s/%s", language, name), "", "")
	}
	tree, err := e.Store.Load(handle)
	if err != nil {
		return nil, err
	}

	loader := imloader.NewLoader(e.Registry, e.Modules)
	loader.Resolve = e.resolveInclude
	def, err := loader.Load(tree, "", cacheKey)
	if err != nil {
		return nil, err
	}
	def.Language = language
	def.Name = name
	if err := e.mergeGlobalSchemas(def); err != nil {
		return nil, err
	}
	e.loaded[cacheKey] = def
	return &InputMethod{engine: e, def: def}, nil
}

// mergeGlobalSchemas folds the store's global variable/command schema
// documents (kept under the reserved language=t, name=nil tags) into a
// freshly compiled definition. Entries the description declares itself
// are kept; the global documents only fill the gaps.
func (e *Engine) mergeGlobalSchemas(def *imloader.InputMethodDef) error {
	src, ok := e.Store.(imdb.SchemaSource)
	if !ok {
		return nil
	}
	for _, extra := range []string{"variable", "command"} {
		tag := imdb.Tag{InputMethod: "input-method", Language: "t", Name: "nil", Extra: extra}
		doc, ok := src.LoadSchema(tag)
		if !ok {
			continue
		}
		vars, cmds, err := imloader.LoadSchemaYAML(doc)
		if err != nil {
			return errors.NewLoadError(errors.Parse, errors.Position{},
				fmt.Sprintf("global %s schema: %v", extra, err), "", "")
		}
		for name, schema := range vars {
			if _, exists := def.Variables[name]; !exists {
				def.Variables[name] = schema
			}
		}
		for name, schema := range cmds {
			if _, exists := def.Commands[name]; !exists {
				def.Commands[name] = schema
			}
		}
	}
	return nil
}

// resolveInclude satisfies imloader.IncludeResolver against the shared
// store and definition cache, for `(include (tag…) …)` sections.
func (e *Engine) resolveInclude(tag imloader.IncludeTag) (*imloader.InputMethodDef, error) {
	im, err := e.OpenIM(tag.Language, tag.Name)
	if err != nil {
		return nil, err
	}
	return im.def, nil
}

// CloseIM unloads an input method. Definitions are reference-free Go
// values collected by the GC once no Context and no cache entry holds
// them; explicit unloading only needs to drop the cache entry.
func (e *Engine) CloseIM(im *InputMethod) {
	for k, def := range e.loaded {
		if def == im.def {
			delete(e.loaded, k)
			return
		}
	}
}

// CreateIC creates a fresh input context bound to this input method.
func (im *InputMethod) CreateIC() *InputContext {
	return &InputContext{im: im, ctx: imeval.NewContext(im.def, im.engine.Registry)}
}

// DestroyIC releases an input context: nothing to release explicitly,
// Go's GC reclaims the Context once the caller drops its reference.
func (im *InputMethod) DestroyIC(ic *InputContext) {}

// Filter feeds one key into the context: returns 1 if the key was
// consumed with nothing to look up, 0 if the caller should call Lookup.
// After the key is processed, the registered draw callbacks fire for
// whichever change flags the filter run set.
func (ic *InputContext) Filter(keyName string) int {
	key := ic.im.engine.Registry.Intern(keyName)
	wasEmpty := ic.ctx.Preedit.IsEmpty()
	res := imctx.Filter(ic.ctx, key)

	if wasEmpty && !ic.ctx.Preedit.IsEmpty() {
		ic.fire(CallbackPreeditStart)
	}
	if ic.ctx.Changed.Preedit {
		ic.fire(CallbackPreeditDraw)
	}
	if !wasEmpty && ic.ctx.Preedit.IsEmpty() {
		ic.fire(CallbackPreeditDone)
	}
	if ic.ctx.Changed.Status {
		ic.fire(CallbackStatusDraw)
	}
	if ic.ctx.Changed.Candidates {
		ic.fire(CallbackCandidatesDraw)
	}

	if res.Consumed && !res.HasOutput {
		return 1
	}
	return 0
}

// Lookup drains produced text: 0 on success, -1 if the triggering key
// was unhandled and there is nothing to deliver (the host should then
// re-dispatch the key itself).
func (ic *InputContext) Lookup() (text string, code int) {
	text = imctx.Lookup(ic.ctx)
	if text == "" && ic.ctx.KeyUnhandled {
		return "", -1
	}
	return text, 0
}

// Reset discards all pending input without committing anything.
func (ic *InputContext) Reset() {
	imctx.Reset(ic.ctx)
	ic.fire(CallbackReset)
}

// Toggle flips whether this context is actively converting keys.
func (ic *InputContext) Toggle() {
	imctx.Toggle(ic.ctx)
	ic.fire(CallbackToggle)
}

// SetSpot records the host caret position, minus the font/ascent metrics
// a host-side renderer would also track. The engine never reads the
// values itself.
func (ic *InputContext) SetSpot(x, y int) {
	imctx.SetSpot(ic.ctx, x, y)
	ic.fire(CallbackSetSpot)
}

// Observables exposes the context state a host reads after a filter
// call, copied out so callers can't mutate engine-internal state.
type Observables struct {
	Preedit           string
	Status            string
	CursorPos         int
	CandidateShow     bool
	CandidateIndex    int
	CandidateItems    []string
	PreeditChanged    bool
	StatusChanged     bool
	CandidatesChanged bool
}

func (ic *InputContext) Observe() Observables {
	obs := Observables{
		Preedit:           ic.ctx.Preedit.String(),
		Status:            ic.ctx.Status,
		CursorPos:         ic.ctx.CursorPos,
		CandidateShow:     ic.ctx.CandidateShow,
		CandidateIndex:    ic.ctx.CandidateIndex,
		PreeditChanged:    ic.ctx.Changed.Preedit,
		StatusChanged:     ic.ctx.Changed.Status,
		CandidatesChanged: ic.ctx.Changed.Candidates,
	}
	if ic.ctx.CandidateList != nil {
		obs.CandidateItems = append([]string(nil), ic.ctx.CandidateList.Items...)
	}
	return obs
}

// SetSurroundingText wires ic's surrounding-text callback, through which
// actions read and delete host text around the caret.
func (ic *InputContext) SetSurroundingText(cb imeval.SurroundingText) {
	ic.ctx.Surrounding = cb
}

// SetVariable writes a per-context variable (e.g. candidates-group-size),
// rejecting values the definition's schema disallows.
func (ic *InputContext) SetVariable(name string, value int) error {
	if schema, ok := ic.im.def.Variables[name]; ok && !schema.Constraint.Allows(value) {
		return fmt.Errorf("variable %q: value %d violates its constraint", name, value)
	}
	ic.ctx.Vars[name] = value
	return nil
}

// SetCandidatesCharset names the charset candidate lists are filtered
// against (the candidates-charset setting).
func (ic *InputContext) SetCandidatesCharset(name string) {
	ic.ctx.CandidatesCharset = name
}
