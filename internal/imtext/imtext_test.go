package imtext

import "testing"

func TestInsertAndDelete(t *testing.T) {
	txt := New()
	txt.InsertRunes(0, []rune("hello"))
	if txt.String() != "hello" {
		t.Fatalf("got %q", txt.String())
	}
	txt.DeleteRange(1, 3)
	if txt.String() != "hlo" {
		t.Fatalf("got %q", txt.String())
	}
}

func TestPropertyShiftsOnInsert(t *testing.T) {
	txt := New()
	txt.InsertRunes(0, []rune("ab"))
	txt.SetProperty(0, 2, "candidate-list", Value{Candidates: &CandidateList{Items: []string{"x"}}})
	txt.InsertRunes(0, []rune("z"))
	if _, ok := txt.PropertyAt(0, "candidate-list"); ok {
		t.Fatal("property should have shifted past position 0")
	}
	if _, ok := txt.PropertyAt(1, "candidate-list"); !ok {
		t.Fatal("property should now cover position 1")
	}
}

func TestDeleteDropsOverlappingProperty(t *testing.T) {
	txt := New()
	txt.InsertRunes(0, []rune("abc"))
	txt.SetProperty(0, 3, "candidate-list", Value{})
	txt.DeleteRange(1, 2)
	if _, ok := txt.PropertyAt(0, "candidate-list"); ok {
		t.Fatal("overlapping property should have been dropped")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	txt := New()
	txt.InsertRunes(0, []rune("ab"))
	clone := txt.Clone()
	txt.InsertRunes(2, []rune("c"))
	if clone.String() != "ab" {
		t.Fatalf("clone mutated: %q", clone.String())
	}
	if txt.String() != "abc" {
		t.Fatalf("original not mutated: %q", txt.String())
	}
}

func TestCandidateListGroupBounds(t *testing.T) {
	c := &CandidateList{
		Items:  []string{"one", "two", "three", "four"},
		Groups: [][]string{{"one", "two"}, {"three", "four"}},
	}
	from, to := c.GroupBounds(1)
	if from != 2 || to != 4 {
		t.Fatalf("GroupBounds(1) = %d,%d want 2,4", from, to)
	}
	if g := c.GroupOf(2); g != 1 {
		t.Fatalf("GroupOf(2) = %d want 1", g)
	}
}
