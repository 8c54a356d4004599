package desctree

import "testing"

func TestParseSimpleList(t *testing.T) {
	v, err := Parse(`(title "Test IM")`, "test.mim")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	head, ok := v.Head()
	if !ok || head != "title" {
		t.Fatalf("Head() = %q,%v want title,true", head, ok)
	}
	tail := v.Tail()
	if len(tail) != 1 || tail[0].Kind != Text || tail[0].TextVal != "Test IM" {
		t.Fatalf("unexpected tail: %+v", tail)
	}
}

func TestParseNestedLists(t *testing.T) {
	v, err := Parse(`(map ((a) (insert "x")) ((k a) (insert "y")))`, "test.mim")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if head, _ := v.Head(); head != "map" {
		t.Fatalf("expected map, got %q", head)
	}
	if len(v.Tail()) != 2 {
		t.Fatalf("expected 2 map entries, got %d", len(v.Tail()))
	}
}

func TestParseIntegersAndNegatives(t *testing.T) {
	v, err := Parse(`(1 -2 3)`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, -2, 3}
	for i, w := range want {
		if v.Items[i].Kind != Int || v.Items[i].IntVal != w {
			t.Fatalf("item %d = %+v, want int %d", i, v.Items[i], w)
		}
	}
}

func TestParseHexAndCharLiteral(t *testing.T) {
	v, err := Parse(`(#x41 ?a)`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Items[0].IntVal != 0x41 {
		t.Fatalf("hex literal = %d, want 65", v.Items[0].IntVal)
	}
	if v.Items[1].IntVal != 'a' {
		t.Fatalf("char literal = %d, want %d", v.Items[1].IntVal, 'a')
	}
}

func TestParseCommentsIgnored(t *testing.T) {
	v, err := Parse("(title ; a comment\n \"X\")", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Tail()) != 1 {
		t.Fatalf("comment not skipped: %+v", v)
	}
}

func TestParseUnterminatedListIsError(t *testing.T) {
	_, err := Parse(`(title "X"`, "test.mim")
	if err == nil {
		t.Fatal("expected error for unterminated list")
	}
}

func TestParseSymbolWithHyphen(t *testing.T) {
	v, err := Parse(`(M-x C-a @<)`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"M-x", "C-a", "@<"} {
		if v.Items[i].Kind != Symbol || v.Items[i].SymVal != want {
			t.Fatalf("item %d = %+v want symbol %q", i, v.Items[i], want)
		}
	}
}
