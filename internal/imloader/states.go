package imloader

import (
	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imtrie"
)

// loadStates compiles `(state (name title? branch…) …)` into ordered
// States. The first state is the initial state.
func (l *Loader) loadStates(entries []desctree.Value) ([]*State, error) {
	states := make([]*State, 0, len(entries))
	for _, e := range entries {
		if !e.IsList() || len(e.Items) == 0 || e.Items[0].Kind != desctree.Symbol {
			return nil, l.errAt(errors.Parse, e.Pos, "state entry must start with a state name")
		}
		name := e.Items[0].SymVal
		rest := e.Items[1:]

		title := ""
		if len(rest) > 0 && rest[0].Kind == desctree.Text {
			title = rest[0].TextVal
			rest = rest[1:]
		}

		root := imtrie.NewNode()
		for _, branch := range rest {
			if err := l.applyBranch(root, branch); err != nil {
				return nil, err
			}
		}
		states = append(states, &State{Name: l.Registry.Intern(name), Title: title, Root: root})
	}
	if len(states) == 0 {
		return nil, l.errAt(errors.Validate, errors.Position{}, "state section must define at least one state")
	}
	return states, nil
}

// applyBranch compiles one `(map-name action…)` branch into root:
// `nil` sets the root's branch-actions, `t` sets the root's map-actions,
// anything else merges the named map.
func (l *Loader) applyBranch(root *imtrie.Node, branch desctree.Value) error {
	if !branch.IsList() || len(branch.Items) == 0 || branch.Items[0].Kind != desctree.Symbol {
		return l.errAt(errors.Parse, branch.Pos, "branch must start with a map name")
	}
	mapName := branch.Items[0].SymVal
	actions, err := l.parseActionList(branch.Items[1:])
	if err != nil {
		return err
	}
	switch mapName {
	case "nil":
		if root.BranchActions == nil {
			root.BranchActions = actions
		}
	case "t":
		if root.MapActions == nil {
			root.MapActions = actions
		}
	default:
		named, ok := l.namedMaps[mapName]
		if !ok {
			return l.errAt(errors.Validate, branch.Pos, "state branch references undefined map %q", mapName)
		}
		root.MergeWithBranch(named, actions)
	}
	return nil
}

// resolveMacroRefs checks that every macro call observed during action
// parsing resolves to a defined macro. Forward references within one
// description are allowed since macros are collected before this runs.
func (l *Loader) resolveMacroRefs() error {
	for _, ref := range l.pendingRefs {
		if _, ok := l.macros[ref.name]; !ok {
			return l.errAt(errors.Validate, ref.pos, "undefined macro %q", ref.name)
		}
	}
	return nil
}
