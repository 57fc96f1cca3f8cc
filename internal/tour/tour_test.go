package tour

import (
	"reflect"
	"testing"
)

func TestFlip_TwiceRestoresPermutation(t *testing.T) {
	original := []int{0, 1, 2, 3, 4, 5, 6, 7}
	tr := New(original)

	tr.Flip(2, 6)
	tr.Flip(2, 6)

	if !reflect.DeepEqual(tr.Indices(), original) {
		t.Fatalf("double flip did not restore permutation: got %v, want %v", tr.Indices(), original)
	}
}

func TestFlip_PreservesValueSet(t *testing.T) {
	original := []int{4, 1, 3, 0, 6, 2, 5}
	tr := New(original)

	tr.Flip(1, 5)
	tr.Flip(0, 4)
	tr.Flip(6, 2)

	seen := make(map[int]bool)
	for _, v := range tr.Indices() {
		seen[v] = true
	}
	for _, v := range original {
		if !seen[v] {
			t.Fatalf("value %d missing after flips", v)
		}
	}
	if len(seen) != len(original) {
		t.Fatalf("got %d distinct values, want %d", len(seen), len(original))
	}
}

func TestNextPrev_Inverses(t *testing.T) {
	perm := []int{3, 1, 4, 0, 2}
	tr := New(perm)

	for _, v := range perm {
		if got := tr.Next(tr.Prev(v)); got != v {
			t.Fatalf("Next(Prev(%d)) = %d, want %d", v, got, v)
		}
		if got := tr.Prev(tr.Next(v)); got != v {
			t.Fatalf("Prev(Next(%d)) = %d, want %d", v, got, v)
		}
	}
}

func TestFlip_PanicsOnEqualEndpoints(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on Flip(a, a)")
		}
	}()
	tr := New([]int{0, 1, 2})
	tr.Flip(1, 1)
}

func TestSimpleBetween_LinearNotCyclic(t *testing.T) {
	tr := New([]int{0, 1, 2, 3, 4})
	if !tr.SimpleBetween(0, 4, 2) {
		t.Fatal("expected 2 to be simple-between 0 and 4")
	}
	if tr.SimpleBetween(0, 2, 4) {
		t.Fatal("4 should not be simple-between 0 and 2")
	}
}

func TestLength_SumsCyclicEdges(t *testing.T) {
	tr := New([]int{0, 1, 2, 3})
	dist := func(a, b int) int {
		d := a - b
		if d < 0 {
			d = -d
		}
		return d
	}
	got := tr.Length(dist)
	want := 1 + 1 + 1 + 3 // 0-1,1-2,2-3,3-0
	if got != want {
		t.Fatalf("Length = %d, want %d", got, want)
	}
}

func TestAreNeighbors(t *testing.T) {
	tr := New([]int{0, 1, 2, 3, 4})
	if !tr.AreNeighbors(0, 1) || !tr.AreNeighbors(0, 4) {
		t.Fatal("expected 0's cyclic neighbors to be 1 and 4")
	}
	if tr.AreNeighbors(0, 2) {
		t.Fatal("0 and 2 should not be neighbors")
	}
}
