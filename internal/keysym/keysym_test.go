package keysym

import "testing"

func TestInternReturnsSameSymbolForSameName(t *testing.T) {
	r := NewRegistry()
	a := r.Intern("C-x")
	b := r.Intern("C-x")
	if a != b {
		t.Fatalf("expected same symbol, got %v and %v", a, b)
	}
	if r.NameOf(a) != "C-x" {
		t.Fatalf("NameOf = %q, want C-x", r.NameOf(a))
	}
}

func TestPreinternedSingleCharCodes(t *testing.T) {
	r := NewRegistry()
	cases := map[int]string{
		0:   "C-@",
		1:   "C-A",
		27:  "C-[",
		65:  "A",
		97:  "a",
		127: "Delete",
	}
	for code, want := range cases {
		sym, ok := r.Lookup(want)
		if !ok {
			t.Fatalf("code %d: name %q not preinterned", code, want)
		}
		if r.NameOf(sym) != want {
			t.Fatalf("code %d: NameOf = %q, want %q", code, r.NameOf(sym), want)
		}
	}
}

func TestControlAliasRoundTrip(t *testing.T) {
	r := NewRegistry()
	ctrlX, _ := r.Lookup("C-X")
	upperX, _ := r.Lookup("X")
	if alias, ok := r.GetProp(ctrlX, "key_alias"); !ok || alias != upperX {
		t.Fatalf("C-X key_alias = %v, want %v", alias, upperX)
	}
}

func TestKeyAliasSynthesizesMetaAlpha(t *testing.T) {
	r := NewRegistry()
	mx := r.Intern("M-x")
	alias := r.KeyAlias(mx)
	if r.NameOf(alias) != "A-x" {
		t.Fatalf("KeyAlias(M-x) = %q, want A-x", r.NameOf(alias))
	}
	// second call should return the cached alias, not synthesize again.
	alias2 := r.KeyAlias(mx)
	if alias2 != alias {
		t.Fatalf("KeyAlias not cached: %v != %v", alias, alias2)
	}
}

func TestKeyAliasSynthesizesAlphaToMeta(t *testing.T) {
	r := NewRegistry()
	ax := r.Intern("A-q")
	alias := r.KeyAlias(ax)
	if r.NameOf(alias) != "M-q" {
		t.Fatalf("KeyAlias(A-q) = %q, want M-q", r.NameOf(alias))
	}
}

func TestKeyAliasShiftLetter(t *testing.T) {
	r := NewRegistry()
	sa := r.Intern("S-A")
	alias := r.KeyAlias(sa)
	if r.NameOf(alias) != "A" {
		t.Fatalf("KeyAlias(S-A) = %q, want A", r.NameOf(alias))
	}
}

func TestKeyAliasNoneForPlainKey(t *testing.T) {
	r := NewRegistry()
	a := r.Intern("a")
	if alias := r.KeyAlias(a); alias != Invalid {
		t.Fatalf("KeyAlias(a) = %v, want Invalid", alias)
	}
}

func TestWellKnownMetaAliases(t *testing.T) {
	r := NewRegistry()
	backspace, ok := r.Lookup("M-BackSpace")
	if !ok {
		t.Fatal("M-BackSpace not interned")
	}
	primary, ok := r.GetProp(backspace, "key_alias")
	if !ok {
		t.Fatal("M-BackSpace has no key_alias")
	}
	if r.NameOf(primary) != "M-H" {
		t.Fatalf("M-BackSpace alias = %q, want M-H", r.NameOf(primary))
	}
}
