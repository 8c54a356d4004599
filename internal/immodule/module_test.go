package immodule

import "testing"

func TestNativeRegistryLoadAndLookup(t *testing.T) {
	reg := NewNativeRegistry()
	reg.Register("candidates", "filter", func(args PList) (PList, error) {
		return PList{IntValue(1)}, nil
	})

	mod, err := reg.Load("candidates")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fn, ok := mod.Lookup("filter")
	if !ok {
		t.Fatal("expected filter function to resolve")
	}
	out, err := fn(nil)
	if err != nil {
		t.Fatalf("unexpected error calling fn: %v", err)
	}
	if len(out) != 1 || out[0].Int != 1 {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestNativeRegistryUnknownModule(t *testing.T) {
	reg := NewNativeRegistry()
	if _, err := reg.Load("nope"); err == nil {
		t.Fatal("expected error for unregistered module")
	}
}

func TestModuleLookupMissingFunction(t *testing.T) {
	reg := NewNativeRegistry()
	reg.Register("m", "f", func(args PList) (PList, error) { return nil, nil })
	mod, _ := reg.Load("m")
	if _, ok := mod.Lookup("g"); ok {
		t.Fatal("expected lookup of unregistered function to fail")
	}
}
