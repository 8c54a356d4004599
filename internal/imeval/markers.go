package imeval

import "strconv"

// parseSurroundingMarker recognizes the `@-N` / `@+N` marker forms:
// N characters before/after the surrounding-text cursor. Returns ok=false
// for anything else, including the single-character `@-`/`@+` markers.
func parseSurroundingMarker(name string) (n int, before bool, ok bool) {
	if len(name) < 3 || name[0] != '@' {
		return 0, false, false
	}
	sign := name[1]
	if sign != '-' && sign != '+' {
		return 0, false, false
	}
	v, err := strconv.Atoi(name[2:])
	if err != nil || v <= 0 {
		return 0, false, false
	}
	return v, sign == '-', true
}

// isDigitMarker reports whether name is one of the predefined `@0`..`@9`
// digit-position markers.
func isDigitMarker(name string) bool {
	return len(name) == 2 && name[0] == '@' && name[1] >= '0' && name[1] <= '9'
}

// resolveSymbol resolves a bare SymbolRef to its integer value: a
// predefined `@…` marker, a surrounding-text character code, a user
// marker, or a variable, in that order.
func (ctx *Context) resolveSymbol(name string) (int, error) {
	if len(name) > 0 && name[0] == '@' {
		return ctx.resolveAt(name)
	}
	if v, ok := ctx.Markers[name]; ok {
		return v, nil
	}
	if v, ok := ctx.Vars[name]; ok {
		return v, nil
	}
	return 0, &undefinedSymbolError{name}
}

func (ctx *Context) resolveAt(name string) (int, error) {
	switch name {
	case "@<":
		return 0, nil
	case "@>":
		return ctx.Preedit.Len(), nil
	case "@-":
		return ctx.CursorPos - 1, nil
	case "@+":
		return ctx.CursorPos + 1, nil
	case "@=":
		return ctx.CursorPos, nil
	case "@@":
		return ctx.KeyHead, nil
	case "@[":
		return ctx.CandidateFrom, nil
	case "@]":
		return ctx.CandidateTo, nil
	}
	if isDigitMarker(name) {
		return ctx.Markers[name], nil
	}
	if n, before, ok := parseSurroundingMarker(name); ok {
		return ctx.surroundingRune(n, before)
	}
	return 0, &undefinedSymbolError{name}
}

// surroundingRune fetches (and caches for this top-level action-list
// call) the nth rune before/after the host caret through the
// surrounding-text callback.
func (ctx *Context) surroundingRune(n int, before bool) (int, error) {
	if ctx.Surrounding == nil {
		return 0, &undefinedSymbolError{"surrounding-text unavailable"}
	}
	if before {
		if len(ctx.PrecedingText) < n {
			b, _, err := ctx.Surrounding.GetSurroundingText(n, 0)
			if err != nil {
				return 0, err
			}
			ctx.PrecedingText = b
		}
		if n > len(ctx.PrecedingText) {
			return 0, &undefinedSymbolError{"surrounding text too short"}
		}
		return int(ctx.PrecedingText[len(ctx.PrecedingText)-n]), nil
	}
	if len(ctx.FollowingText) < n {
		_, a, err := ctx.Surrounding.GetSurroundingText(0, n)
		if err != nil {
			return 0, err
		}
		ctx.FollowingText = a
	}
	if n > len(ctx.FollowingText) {
		return 0, &undefinedSymbolError{"surrounding text too short"}
	}
	return int(ctx.FollowingText[n-1]), nil
}

type undefinedSymbolError struct{ name string }

func (e *undefinedSymbolError) Error() string { return "undefined symbol " + e.name }
