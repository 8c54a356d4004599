package imloader

import (
	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/errors"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
)

// parseKeyseq compiles a map key sequence: a text (one char per key) or
// a list of integers (0..255, mapped to their one-char symbol) and
// symbols (passed through as-is).
func (l *Loader) parseKeyseq(v desctree.Value) ([]keysym.Symbol, error) {
	switch v.Kind {
	case desctree.Text:
		syms := make([]keysym.Symbol, 0, len(v.TextVal))
		for _, r := range v.TextVal {
			syms = append(syms, l.Registry.Intern(string(r)))
		}
		return syms, nil
	case desctree.List:
		syms := make([]keysym.Symbol, 0, len(v.Items))
		for _, item := range v.Items {
			switch item.Kind {
			case desctree.Int:
				sym := l.Registry.SymbolForCode(item.IntVal)
				if sym == keysym.Invalid {
					return nil, l.errAt(errors.Validate, item.Pos, "keyseq integer %d out of range 0..255", item.IntVal)
				}
				syms = append(syms, sym)
			case desctree.Symbol:
				syms = append(syms, l.Registry.Intern(item.SymVal))
			default:
				return nil, l.errAt(errors.Parse, item.Pos, "keyseq elements must be integers or symbols")
			}
		}
		return syms, nil
	default:
		return nil, l.errAt(errors.Parse, v.Pos, "keyseq must be a text or a list")
	}
}
