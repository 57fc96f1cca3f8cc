package tsp

import (
	"math"
	"testing"

	"github.com/cohesort/cohesort/internal/distmatrix"
)

func TestTwoOpt_ReturnsPermutation(t *testing.T) {
	const n = 30
	m := distmatrix.New[uint8](n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.Set(i, j, uint8((i*7+j*13)%251+1))
		}
	}
	neigh := distmatrix.Build(m, distmatrix.NeighborCount)

	initial := make([]int, n)
	for i := range initial {
		initial[i] = i
	}

	perm := TwoOpt(m, neigh, initial)
	if got := len(perm); got != n {
		t.Fatalf("got %d indices, want %d", got, n)
	}

	seen := make([]bool, n)
	for _, v := range perm {
		if v < 0 || v >= n || seen[v] {
			t.Fatalf("result is not a permutation of 0..%d: %v", n-1, perm)
		}
		seen[v] = true
	}
}

func TestTwoOpt_NeverWorsensTheTour(t *testing.T) {
	const n = 40
	m := distmatrix.New[uint8](n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.Set(i, j, uint8((i*31+j*17)%200+1))
		}
	}
	neigh := distmatrix.Build(m, distmatrix.NeighborCount)

	initial := make([]int, n)
	for i := range initial {
		initial[i] = i
	}

	before := length(m, initial)
	after := length(m, TwoOpt(m, neigh, initial))
	if after > before {
		t.Fatalf("2-opt worsened the tour: %d -> %d", before, after)
	}
}

func TestTwoOpt_FourNodeCheckerboard(t *testing.T) {
	// D[i,j] groups {0,2} and {1,3} tightly with distance 1, everything
	// else maximally far at 255. Any 4-cycle must cross between the
	// groups twice, so the best cyclic tour is 1+255+1+255 = 512, reached
	// exactly when each group's members sit next to each other.
	raw := [][]uint8{
		{0, 255, 1, 255},
		{255, 0, 255, 1},
		{1, 255, 0, 255},
		{255, 1, 255, 0},
	}
	m := distmatrix.New[uint8](4)
	for i := range raw {
		for j := range raw[i] {
			m.Set(i, j, raw[i][j])
		}
	}
	neigh := distmatrix.Build(m, distmatrix.NeighborCount)

	for _, start := range []int{0, 1, 2, 3} {
		nn := NearestNeighborTour(m, neigh, start)
		perm := TwoOpt(m, neigh, nn)
		if len(perm) != 4 {
			t.Fatalf("expected permutation of length 4, got %d", len(perm))
		}
		total := length(m, perm)
		if total > 512 {
			t.Fatalf("start=%d: total tour distance %d, want <= 512", start, total)
		}
		pos := make([]int, 4)
		for p, v := range perm {
			pos[v] = p
		}
		for _, pair := range [][2]int{{0, 2}, {1, 3}} {
			if d := (pos[pair[0]] - pos[pair[1]] + 4) % 4; d != 1 && d != 3 {
				t.Fatalf("start=%d: %d and %d not adjacent in %v", start, pair[0], pair[1], perm)
			}
		}
	}
}

func TestNearestNeighborTour_VisitsEveryNode(t *testing.T) {
	const n = 25
	m := distmatrix.New[uint8](n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.Set(i, j, uint8((i+j)%250+1))
		}
	}
	neigh := distmatrix.Build(m, distmatrix.NeighborCount)

	order := NearestNeighborTour(m, neigh, 5)
	if len(order) != n {
		t.Fatalf("got %d nodes, want %d", len(order), n)
	}
	seen := make([]bool, n)
	for _, v := range order {
		seen[v] = true
	}
	for i, ok := range seen {
		if !ok {
			t.Fatalf("node %d never visited", i)
		}
	}
}

func TestTwoOpt_InputTooSmallReturnsUnchanged(t *testing.T) {
	m := distmatrix.New[uint8](2)
	m.Set(0, 1, 5)
	neigh := distmatrix.Build(m, distmatrix.NeighborCount)

	got := TwoOpt(m, neigh, []int{0, 1})
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("expected input order unchanged for n<3, got %v", got)
	}
}

// TestTwoOpt_Berlin52 reproduces the canonical TSPLIB berlin52 instance
// with truncated Euclidean distances: the 2-opt optimum from a
// nearest-neighbor seed at index 11 must be substantially below the
// nearest-neighbor baseline, landing under 8000.
func TestTwoOpt_Berlin52(t *testing.T) {
	coords := berlin52Coords
	n := len(coords)

	m := distmatrix.New[uint32](n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := coords[i][0] - coords[j][0]
			dy := coords[i][1] - coords[j][1]
			d := uint32(math.Sqrt(dx*dx + dy*dy))
			m.Set(i, j, d)
		}
	}
	neigh := distmatrix.Build(m, distmatrix.NeighborCount)

	nn := NearestNeighborTour(m, neigh, 11)
	improved := TwoOpt(m, neigh, nn)

	total := length(m, improved)
	if total >= 8000 {
		t.Fatalf("berlin52 2-opt tour length = %d, want < 8000", total)
	}
}

func length[T distmatrix.Integer](m *distmatrix.Matrix[T], perm []int) int {
	total := 0
	n := len(perm)
	for p := 0; p < n; p++ {
		total += int(m.At(perm[p], perm[(p+1)%n]))
	}
	return total
}

var berlin52Coords = [][2]float64{
	{565, 575}, {25, 185}, {345, 750}, {945, 685}, {845, 655}, {880, 660},
	{25, 230}, {525, 1000}, {580, 1175}, {650, 1130}, {1605, 620}, {1220, 580},
	{1465, 200}, {1530, 5}, {845, 680}, {725, 370}, {145, 665}, {415, 635},
	{510, 875}, {560, 365}, {300, 465}, {520, 585}, {480, 415}, {835, 625},
	{975, 580}, {1215, 245}, {1320, 315}, {1250, 400}, {660, 180}, {410, 250},
	{420, 555}, {575, 665}, {1150, 1160}, {700, 580}, {685, 595}, {685, 610},
	{770, 610}, {795, 645}, {720, 635}, {760, 650}, {475, 960}, {95, 260},
	{875, 920}, {700, 500}, {555, 815}, {830, 485}, {1170, 65}, {830, 610},
	{605, 625}, {595, 360}, {1340, 725}, {1740, 245},
}
