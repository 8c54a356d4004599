// Package keysym interns key-event names into compact comparable tokens
// and maintains the modifier-alias relationships the filter loop needs.
package keysym

import (
	"fmt"
	"sync"
)

// Symbol is an interned key-event identifier. The zero value is Invalid.
type Symbol int

const Invalid Symbol = 0

// Registry interns symbol names to Symbols and back, and stores a small
// property bag per symbol (currently the "key_alias" property used by
// modifier-alias synthesis and the "ctrl_alias" back-link from a letter
// to its control code, but left general for module use).
//
// A Registry is safe for concurrent use: the symbol table is
// process-wide and append-only.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Symbol
	names  []string
	props  []map[string]Symbol
	byCode [256]Symbol
}

func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Symbol),
		names:  []string{""}, // index 0 unused, keeps Symbol(0) == Invalid
		props:  []map[string]Symbol{nil},
	}
	r.initPreinterned()
	return r
}

// Intern returns the Symbol for name, creating it if this is the first use.
func (r *Registry) Intern(name string) Symbol {
	r.mu.RLock()
	if s, ok := r.byName[name]; ok {
		r.mu.RUnlock()
		return s
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byName[name]; ok {
		return s
	}
	s := Symbol(len(r.names))
	r.names = append(r.names, name)
	r.props = append(r.props, nil)
	r.byName[name] = s
	return s
}

// NameOf returns the interned name for s, or "" if s is unknown.
func (r *Registry) NameOf(s Symbol) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(s) <= 0 || int(s) >= len(r.names) {
		return ""
	}
	return r.names[s]
}

// Lookup returns the Symbol for name without interning it.
func (r *Registry) Lookup(name string) (Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// PutProp attaches key=val to sym's property bag.
func (r *Registry) PutProp(sym Symbol, key string, val Symbol) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(sym) <= 0 || int(sym) >= len(r.props) {
		return
	}
	if r.props[sym] == nil {
		r.props[sym] = make(map[string]Symbol)
	}
	r.props[sym][key] = val
}

// GetProp reads a property previously stored with PutProp.
func (r *Registry) GetProp(sym Symbol, key string) (Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(sym) <= 0 || int(sym) >= len(r.props) || r.props[sym] == nil {
		return Invalid, false
	}
	v, ok := r.props[sym][key]
	return v, ok
}

// SymbolForCode returns the pre-interned canonical one-char symbol for a
// key code in 0..255, or Invalid when code is out of range.
func (r *Registry) SymbolForCode(code int) Symbol {
	if code < 0 || code > 255 {
		return Invalid
	}
	return r.byCode[code]
}

// KeyAlias synthesizes and caches the opposite-modifier alias for sym's
// name: if the name carries an "M-" or "A-" prefix and no
// key_alias property yet exists, derive the other spelling and store it.
// Shift-prefixed single letters (S-A..S-Z) alias to the bare uppercase
// one-char symbol. Returns Invalid if no alias applies.
func (r *Registry) KeyAlias(sym Symbol) Symbol {
	if alias, ok := r.GetProp(sym, "key_alias"); ok {
		return alias
	}

	name := r.NameOf(sym)
	var aliasName string
	switch {
	case len(name) > 2 && name[0] == 'M' && name[1] == '-':
		aliasName = "A-" + name[2:]
	case len(name) > 2 && name[0] == 'A' && name[1] == '-':
		aliasName = "M-" + name[2:]
	case len(name) == 3 && name[0] == 'S' && name[1] == '-' && name[2] >= 'A' && name[2] <= 'Z':
		aliasName = name[2:]
	default:
		return Invalid
	}

	alias := r.Intern(aliasName)
	r.PutProp(sym, "key_alias", alias)
	return alias
}

// initPreinterned pre-interns the canonical single-character key symbols
// for codes 0..255. The primary name for each code is interned
// first; well-known aliases (M-BackSpace, M-Delete, ...) are then attached
// as the "key_alias" property on the corresponding M-@..M-_ / M-Delete
// primary symbol, and the reverse alias is attached to the well-known name
// too, so lookup_or_alias finds either spelling.
func (r *Registry) initPreinterned() {
	for code := 0; code < 256; code++ {
		var name string
		switch {
		case code == 0:
			name = "C-@"
		case code >= 1 && code <= 26:
			name = fmt.Sprintf("C-%c", 'A'+code-1)
		case code >= 27 && code <= 31:
			name = fmt.Sprintf("C-%c", '['+code-27)
		case code >= 32 && code <= 126:
			name = string(rune(code))
		case code == 127:
			name = "Delete"
		case code >= 128 && code <= 159:
			name = fmt.Sprintf("M-%c", '@'+code-128)
		default: // 160..255
			name = fmt.Sprintf("M-%c", rune(code-128))
		}
		sym := r.Intern(name)
		r.byCode[code] = sym

		if code >= 1 && code <= 26 {
			ctrlEquiv := r.Intern(fmt.Sprintf("%c", 'A'+code-1))
			r.PutProp(sym, "key_alias", ctrlEquiv)
			r.PutProp(ctrlEquiv, "ctrl_alias", sym)
		}
	}

	// Well-known aliases for the meta-shifted control codes.
	wellKnown := map[string]string{
		"M-H":    "M-BackSpace",
		"M-I":    "M-Tab",
		"M-J":    "M-Linefeed",
		"M-L":    "M-Clear",
		"M-M":    "M-Return",
		"M-[":    "M-Escape",
		"M-\x7f": "M-Delete",
	}
	for primary, alias := range wellKnown {
		p := r.Intern(primary)
		a := r.Intern(alias)
		r.PutProp(p, "key_alias", a)
		r.PutProp(a, "key_alias", p)
	}
}
