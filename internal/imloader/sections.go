package imloader

import (
	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imtrie"
)

// loadMapSection handles `(map (name entry…) (name2 entry…) …)` where
// each entry is `(keyseq action…)`.
func (l *Loader) loadMapSection(entries []desctree.Value) error {
	for _, mapDef := range entries {
		name, ok := mapDef.Head()
		if !ok {
			return l.errAt(errors.Parse, mapDef.Pos, "map entry must start with a map name")
		}
		root := l.namedMaps[name]
		if root == nil {
			root = imtrie.NewNode()
			l.namedMaps[name] = root
		}
		for _, entry := range mapDef.Tail() {
			if !entry.IsList() || len(entry.Items) == 0 {
				return l.errAt(errors.Parse, entry.Pos, "map %q: entry must be (keyseq action…)", name)
			}
			keyseq := entry.Items[0]
			actionsVals := entry.Items[1:]
			syms, err := l.parseKeyseq(keyseq)
			if err != nil {
				return err
			}
			actions, err := l.parseActionList(actionsVals)
			if err != nil {
				return err
			}
			node := root
			for _, sym := range syms {
				node = node.Deepen(sym)
			}
			// first-defined wins
			if node.MapActions == nil {
				node.MapActions = actions
			}
		}
	}
	return nil
}

// loadMacroSection handles `(macro (name action…) (name2 action…) …)`.
func (l *Loader) loadMacroSection(entries []desctree.Value) error {
	for _, m := range entries {
		name, ok := m.Head()
		if !ok {
			return l.errAt(errors.Parse, m.Pos, "macro entry must start with a macro name")
		}
		body, err := l.parseActionList(m.Tail())
		if err != nil {
			return err
		}
		l.macros[name] = &Macro{Name: name, Body: body}
	}
	return nil
}

// loadModuleSection handles `(module (name fn1 fn2 …) …)`. If loading or
// symbol resolution fails the whole input method load fails.
func (l *Loader) loadModuleSection(def *InputMethodDef, entries []desctree.Value) error {
	if l.Modules == nil {
		return l.errAt(errors.Module, errors.Position{}, "description requires external modules but no module loader was configured")
	}
	for _, m := range entries {
		name, ok := m.Head()
		if !ok {
			return l.errAt(errors.Parse, m.Pos, "module entry must start with a module name")
		}
		mod, err := l.Modules.Load(name)
		if err != nil {
			return l.errAt(errors.Module, m.Pos, "loading module %q: %v", name, err)
		}
		for _, fnVal := range m.Tail() {
			if fnVal.Kind != desctree.Symbol {
				return l.errAt(errors.Parse, fnVal.Pos, "module %q: function name must be a symbol", name)
			}
			if _, ok := mod.Lookup(fnVal.SymVal); !ok {
				return l.errAt(errors.Module, fnVal.Pos, "module %q has no function %q", name, fnVal.SymVal)
			}
		}
		def.Modules[name] = mod
	}
	return nil
}

// loadVariableSection handles the inline `(variable (name default) …)`
// form; `(enum v1 v2…)` or `(range min max)` may follow the default as an
// optional constraint.
func (l *Loader) loadVariableSection(def *InputMethodDef, entries []desctree.Value) error {
	for _, v := range entries {
		if !v.IsList() || len(v.Items) < 2 {
			return l.errAt(errors.Parse, v.Pos, "variable entry must be (name default [constraint])")
		}
		if v.Items[0].Kind != desctree.Symbol {
			return l.errAt(errors.Parse, v.Pos, "variable name must be a symbol")
		}
		name := v.Items[0].SymVal
		schema := VariableSchema{Name: name}
		switch v.Items[1].Kind {
		case desctree.Int:
			schema.Type = TypeInt
			schema.Default = v.Items[1].IntVal
		case desctree.Symbol:
			schema.Type = TypeSymbol
		case desctree.Text:
			schema.Type = TypeText
		}
		for _, extra := range v.Items[2:] {
			head, _ := extra.Head()
			switch head {
			case "enum":
				for _, e := range extra.Tail() {
					if e.Kind == desctree.Int {
						schema.Constraint.Enum = append(schema.Constraint.Enum, e.IntVal)
					}
				}
			case "range":
				tail := extra.Tail()
				if len(tail) == 2 && tail[0].Kind == desctree.Int && tail[1].Kind == desctree.Int {
					schema.Constraint.HasRange = true
					schema.Constraint.Min = tail[0].IntVal
					schema.Constraint.Max = tail[1].IntVal
				}
			}
		}
		if !schema.Constraint.Allows(schema.Default) && schema.Type == TypeInt {
			return l.errAt(errors.Validate, v.Pos, "variable %q: default %d violates its own constraint", name, schema.Default)
		}
		def.Variables[name] = schema
	}
	return nil
}

// loadCommandSection handles `(command (name default) …)`.
func (l *Loader) loadCommandSection(def *InputMethodDef, entries []desctree.Value) error {
	for _, c := range entries {
		if !c.IsList() || len(c.Items) < 1 || c.Items[0].Kind != desctree.Symbol {
			return l.errAt(errors.Parse, c.Pos, "command entry must start with a command name")
		}
		schema := CommandSchema{Name: c.Items[0].SymVal}
		if len(c.Items) >= 2 && c.Items[1].Kind == desctree.Int {
			schema.Default = c.Items[1].IntVal
		}
		def.Commands[schema.Name] = schema
	}
	return nil
}

// loadIncludeSection handles `(include (lang name extra) section-kind)`.
func (l *Loader) loadIncludeSection(def *InputMethodDef, entries []desctree.Value) error {
	if len(entries) < 2 || !entries[0].IsList() || len(entries[0].Items) != 3 {
		return l.errAt(errors.Parse, errors.Position{}, "include must be (include (lang name extra) section-kind)")
	}
	if l.Resolve == nil {
		return l.errAt(errors.NotFound, entries[0].Pos, "include requires a resolver but none was configured")
	}
	tag := IncludeTag{
		Language: symOrText(entries[0].Items[0]),
		Name:     symOrText(entries[0].Items[1]),
		Extra:    symOrText(entries[0].Items[2]),
	}
	src, err := l.Resolve(tag)
	if err != nil {
		return l.errAt(errors.NotFound, entries[0].Pos, "resolving include %+v: %v", tag, err)
	}
	kind := symOrText(entries[1])
	switch kind {
	case "map", "":
		for name, node := range l.srcNamedMaps(src) {
			if _, exists := l.namedMaps[name]; !exists {
				l.namedMaps[name] = node
			}
		}
		fallthrough
	case "macro":
		for name, m := range src.Macros {
			if _, exists := l.macros[name]; !exists {
				l.macros[name] = m
			}
		}
	}
	return nil
}

// srcNamedMaps exposes an already-loaded def's per-state root tries for
// reuse by `include`, keyed by state name since InputMethodDef doesn't
// retain its pre-merge named maps once states are compiled.
func (l *Loader) srcNamedMaps(src *InputMethodDef) map[string]*imtrie.Node {
	out := make(map[string]*imtrie.Node, len(src.States))
	for _, st := range src.States {
		out[l.Registry.NameOf(st.Name)] = st.Root
	}
	return out
}

func symOrText(v desctree.Value) string {
	switch v.Kind {
	case desctree.Symbol:
		return v.SymVal
	case desctree.Text:
		return v.TextVal
	default:
		return ""
	}
}
