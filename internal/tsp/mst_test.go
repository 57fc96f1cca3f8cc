package tsp

import (
	"math"
	"testing"

	"github.com/cohesort/cohesort/internal/distmatrix"
)

func TestMinimumSpanningTreeLength_SevenPointInstance(t *testing.T) {
	points := [][2]float64{
		{12, 8}, {20, 16}, {24, 8}, {32, 0}, {40, 8}, {40, 16}, {16, 4},
	}
	n := len(points)
	m := distmatrix.New[uint32](n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := points[i][0] - points[j][0]
			dy := points[i][1] - points[j][1]
			m.Set(i, j, uint32(math.Sqrt(dx*dx+dy*dy)))
		}
	}

	if got := MinimumSpanningTreeLength(m); got != 51 {
		t.Fatalf("MST length = %d, want 51", got)
	}
}

func TestMinimumSpanningTreeLength_TrivialSizes(t *testing.T) {
	if got := MinimumSpanningTreeLength(distmatrix.New[uint8](0)); got != 0 {
		t.Fatalf("MST of empty matrix = %d, want 0", got)
	}
	if got := MinimumSpanningTreeLength(distmatrix.New[uint8](1)); got != 0 {
		t.Fatalf("MST of single node = %d, want 0", got)
	}
}
