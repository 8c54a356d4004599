// Package imloader compiles a parsed description tree into a validated,
// immutable InputMethodDef: named maps become per-state tries, action
// lists are shape-checked, and macro/module references are resolved up
// front.
package imloader

import (
	"fmt"

	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imast"
	"github.com/mike-fabian/m17n-lib-sub004/internal/immodule"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imtrie"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

// EngineVersion gates descriptions that declare a `version` newer than
// the engine understands.
const EngineVersion = "1.8.0"

// Macro is a named, reusable action list.
type Macro struct {
	Name string
	Body imast.ActionList
}

// State is one named collection of maps plus its status title.
type State struct {
	Name  keysym.Symbol
	Title string
	Root  *imtrie.Node
}

// InputMethodDef is the immutable, shareable compiled form of a
// description. Every field is read-only after Load returns.
type InputMethodDef struct {
	Language string
	Name     string
	Title    string
	Version  string

	States []*State // ordered; States[0] is the initial state

	Macros    map[string]*Macro
	Modules   map[string]*immodule.Module
	Variables map[string]VariableSchema
	Commands  map[string]CommandSchema
}

func (d *InputMethodDef) InitialState() *State {
	if len(d.States) == 0 {
		return nil
	}
	return d.States[0]
}

func (d *InputMethodDef) StateByName(reg *keysym.Registry, name string) (*State, bool) {
	sym, ok := reg.Lookup(name)
	if !ok {
		return nil, false
	}
	for _, s := range d.States {
		if s.Name == sym {
			return s, true
		}
	}
	return nil, false
}

// IncludeTag identifies another InputMethodDef to pull maps/macros from
// via an `include` section, by its (language, name, extra) tag.
type IncludeTag struct {
	Language, Name, Extra string
}

// IncludeResolver looks up a previously loaded InputMethodDef by tag.
// The definition store behind it is not modeled here; callers (e.g. a
// definition cache) supply this.
type IncludeResolver func(tag IncludeTag) (*InputMethodDef, error)

// Loader compiles one description tree into an InputMethodDef.
type Loader struct {
	Registry    *keysym.Registry
	Modules     immodule.Loader
	Resolve     IncludeResolver
	source      string
	file        string
	namedMaps   map[string]*imtrie.Node
	macros      map[string]*Macro
	pendingRefs []pendingMacroRef // deferred macro-resolution checks (forward references allowed within one load)
}

type pendingMacroRef struct {
	name string
	pos  errors.Position
}

func NewLoader(reg *keysym.Registry, modules immodule.Loader) *Loader {
	return &Loader{Registry: reg, Modules: modules}
}

// Load validates and compiles tree (as produced by desctree.Parse from
// `source`) into an InputMethodDef, or returns a *errors.LoadError.
func (l *Loader) Load(tree desctree.Value, source, file string) (*InputMethodDef, error) {
	l.source = source
	l.file = file
	l.namedMaps = make(map[string]*imtrie.Node)
	l.macros = make(map[string]*Macro)
	l.pendingRefs = nil

	if !tree.IsList() {
		return nil, l.errAt(errors.Parse, tree.Pos, "description tree must be a top-level list")
	}

	def := &InputMethodDef{
		Modules:   make(map[string]*immodule.Module),
		Macros:    l.macros,
		Variables: make(map[string]VariableSchema),
		Commands:  make(map[string]CommandSchema),
	}

	var stateSections []desctree.Value
	haveState := false

	for _, section := range tree.Items {
		head, ok := section.Head()
		if !ok {
			return nil, l.errAt(errors.Parse, section.Pos, "top-level section must start with a tag symbol")
		}
		switch head {
		case "title":
			def.Title = firstText(section.Tail())
		case "description":
			// documentation only; accepted but not modeled.
		case "version":
			def.Version = firstText(section.Tail())
			if err := checkVersion(def.Version); err != nil {
				return nil, l.errAt(errors.VersionTooOld, section.Pos, err.Error())
			}
		case "map":
			if err := l.loadMapSection(section.Tail()); err != nil {
				return nil, err
			}
		case "macro":
			if err := l.loadMacroSection(section.Tail()); err != nil {
				return nil, err
			}
		case "module":
			if err := l.loadModuleSection(def, section.Tail()); err != nil {
				return nil, err
			}
		case "variable":
			if err := l.loadVariableSection(def, section.Tail()); err != nil {
				return nil, err
			}
		case "command":
			if err := l.loadCommandSection(def, section.Tail()); err != nil {
				return nil, err
			}
		case "state":
			haveState = true
			stateSections = section.Tail()
		case "include":
			if err := l.loadIncludeSection(def, section.Tail()); err != nil {
				return nil, err
			}
		default:
			return nil, l.errAt(errors.Parse, section.Pos, "unknown top-level section %q", head)
		}
	}

	if !haveState {
		return nil, l.errAt(errors.Validate, tree.Pos, "a definition without a state section is invalid")
	}

	states, err := l.loadStates(stateSections)
	if err != nil {
		return nil, err
	}
	def.States = states

	if def.Title == "" {
		def.Title = def.Name
	}

	if err := l.resolveMacroRefs(); err != nil {
		return nil, err
	}

	return def, nil
}

func (l *Loader) errAt(kind errors.LoadKind, pos errors.Position, format string, args ...any) *errors.LoadError {
	return errors.NewLoadError(kind, pos, fmt.Sprintf(format, args...), l.source, l.file)
}

func firstText(items []desctree.Value) string {
	if len(items) == 0 {
		return ""
	}
	if items[0].Kind == desctree.Text {
		return items[0].TextVal
	}
	if items[0].Kind == desctree.Symbol {
		return items[0].SymVal
	}
	return ""
}

func checkVersion(required string) error {
	if required == "" {
		return nil
	}
	if compareVersions(EngineVersion, required) < 0 {
		return fmt.Errorf("description requires engine version %s, have %s", required, EngineVersion)
	}
	return nil
}

// compareVersions compares two "X.Y.Z" strings numerically component by
// component, returning -1/0/1. Missing trailing components compare as 0.
func compareVersions(a, b string) int {
	as, bs := splitVersion(a), splitVersion(b)
	for i := 0; i < len(as) || i < len(bs); i++ {
		var av, bv int
		if i < len(as) {
			av = as[i]
		}
		if i < len(bs) {
			bv = bs[i]
		}
		if av != bv {
			if av < bv {
				return -1
			}
			return 1
		}
	}
	return 0
}

func splitVersion(v string) []int {
	var out []int
	n := 0
	has := false
	for _, ch := range v + "." {
		if ch >= '0' && ch <= '9' {
			n = n*10 + int(ch-'0')
			has = true
			continue
		}
		if ch == '.' {
			if has {
				out = append(out, n)
			}
			n = 0
			has = false
		}
	}
	return out
}
