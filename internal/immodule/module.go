// Package immodule implements the external-module capability: an
// abstract Loader with a native, in-process implementation used by tests,
// in place of raw dlopen/dlsym.
package immodule

import (
	"fmt"

	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
)

// PList is the flat value sequence external functions exchange with the
// interpreter. The interpreter resolves marker symbols to integers
// before building Args and treats a returned PList as a nested action
// list only at the call site, not within immodule itself (immodule has
// no notion of actions).
type PList []Value

// Value is a single plist value: Go's nearest equivalent to the engine's
// tagged Integer|Text|Symbol|List sum.
type Value struct {
	Int    int
	Text   string
	Symbol string
	List   PList
	Kind   ValueKind
}

type ValueKind int

const (
	KindInt ValueKind = iota
	KindText
	KindSymbol
	KindList
)

func IntValue(v int) Value    { return Value{Kind: KindInt, Int: v} }
func TextValue(v string) Value { return Value{Kind: KindText, Text: v} }

// Function is a single named entry point exposed by a Module.
type Function func(args PList) (PList, error)

// Module is a loaded external module: a named bag of Functions.
type Module struct {
	Name  string
	funcs map[string]Function
}

// Lookup returns the named function, or (nil, false) if the module
// doesn't export it (the description loader treats that as a load-time
// Module error).
func (m *Module) Lookup(name string) (Function, bool) {
	f, ok := m.funcs[name]
	return f, ok
}

// Loader opens named external modules and resolves their functions. If
// loading or symbol resolution fails the caller (the description loader)
// must fail the whole input method load.
type Loader interface {
	Load(name string) (*Module, error)
}

// NativeRegistry is a Loader backed by Go closures registered ahead of
// time. Deployments needing real shared-library modules implement Loader
// with package plugin instead; that binding is platform-specific and not
// provided here.
type NativeRegistry struct {
	modules map[string]map[string]Function
}

func NewNativeRegistry() *NativeRegistry {
	return &NativeRegistry{modules: make(map[string]map[string]Function)}
}

// Register adds fn under (module, function) so a later Load(module) call
// can resolve it. Tests call this to wire up fixture modules.
func (r *NativeRegistry) Register(module, function string, fn Function) {
	funcs, ok := r.modules[module]
	if !ok {
		funcs = make(map[string]Function)
		r.modules[module] = funcs
	}
	funcs[function] = fn
}

func (r *NativeRegistry) Load(name string) (*Module, error) {
	funcs, ok := r.modules[name]
	if !ok {
		return nil, errors.NewLoadError(errors.Module, errors.Position{}, fmt.Sprintf("module %q not registered", name), "", "")
	}
	return &Module{Name: name, funcs: funcs}, nil
}
