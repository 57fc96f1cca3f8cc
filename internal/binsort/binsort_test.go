package binsort

import (
	"math/rand"
	"testing"

	"github.com/cohesort/cohesort/internal/distmatrix"
)

func buildMatrix(n int, seed int64) *distmatrix.Matrix[uint8] {
	rng := rand.New(rand.NewSource(seed))
	m := distmatrix.New[uint8](n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.Set(i, j, uint8(rng.Intn(255)+1))
		}
	}
	return m
}

func testTourLength(m *distmatrix.Matrix[uint8], perm []int) int {
	total := 0
	n := len(perm)
	for p := 0; p < n; p++ {
		total += int(m.At(perm[p], perm[(p+1)%n]))
	}
	return total
}

func TestRun_ReturnsPermutation(t *testing.T) {
	const n = 25
	m := buildMatrix(n, 1)
	initial := make([]int, n)
	for i := range initial {
		initial[i] = i
	}

	result := Run(m, initial, rand.New(rand.NewSource(42)))
	if len(result) != n {
		t.Fatalf("got %d indices, want %d", len(result), n)
	}
	seen := make([]bool, n)
	for _, v := range result {
		if v < 0 || v >= n || seen[v] {
			t.Fatalf("result is not a permutation: %v", result)
		}
		seen[v] = true
	}
}

func TestRun_LengthDoesNotIncreaseOnAverage(t *testing.T) {
	const n = 30
	m := buildMatrix(n, 7)
	initial := make([]int, n)
	for i := range initial {
		initial[i] = i
	}

	before := testTourLength(m, initial)

	worseCount := 0
	const trials = 8
	for s := int64(0); s < trials; s++ {
		after := testTourLength(m, Run(m, initial, rand.New(rand.NewSource(s))))
		if after > before {
			worseCount++
		}
	}
	if worseCount == trials {
		t.Fatalf("every one of %d runs worsened the tour from %d", trials, before)
	}
}

func TestReverseSegment_OddGapFullyReverses(t *testing.T) {
	// An arc over positions 1..4 (gap 3, four positions inclusive) must
	// reverse completely: the acceptance delta models a true reversal,
	// so leaving the middle pair in place would apply a different move
	// than the one that was scored.
	perm := []int{0, 10, 11, 12, 13, 5}
	reverseSegment(perm, 1, 4, 4)

	want := []int{0, 13, 12, 11, 10, 5}
	for i := range want {
		if perm[i] != want[i] {
			t.Fatalf("perm = %v, want %v", perm, want)
		}
	}
}

func TestReverseSegment_EvenGapKeepsMiddle(t *testing.T) {
	// Three positions: the middle one stays put.
	perm := []int{0, 10, 11, 12, 5}
	reverseSegment(perm, 1, 3, 3)

	want := []int{0, 12, 11, 10, 5}
	for i := range want {
		if perm[i] != want[i] {
			t.Fatalf("perm = %v, want %v", perm, want)
		}
	}
}

func TestReverseSegment_WrapsAroundTheEnd(t *testing.T) {
	// The complementary arc runs 4 -> 0 -> 1; reversing [24,20,21]
	// yields [21,20,24] across the same positions.
	perm := []int{20, 21, 2, 3, 24}
	reverseSegment(perm, 4, 1, 3)

	want := []int{20, 24, 2, 3, 21}
	for i := range want {
		if perm[i] != want[i] {
			t.Fatalf("perm = %v, want %v", perm, want)
		}
	}
}

func TestRun_InputTooSmallReturnsUnchanged(t *testing.T) {
	m := distmatrix.New[uint8](2)
	m.Set(0, 1, 5)
	got := Run(m, []int{0, 1}, rand.New(rand.NewSource(1)))
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("expected unchanged order for n<3, got %v", got)
	}
}

func TestRun_Deterministic(t *testing.T) {
	const n = 20
	m := buildMatrix(n, 3)
	initial := make([]int, n)
	for i := range initial {
		initial[i] = i
	}

	a := Run(m, initial, rand.New(rand.NewSource(99)))
	b := Run(m, initial, rand.New(rand.NewSource(99)))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same-seed runs diverged at index %d: %v vs %v", i, a, b)
		}
	}
}
