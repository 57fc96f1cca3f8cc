package tsp

import "github.com/cohesort/cohesort/internal/distmatrix"

// MinimumSpanningTreeLength computes the total weight of the minimum
// spanning tree of m via Prim's algorithm. Neither optimizer consults
// it; it exists as a cheap lower-bound sanity check on the distance
// space, exercised by the geometric test fixtures.
func MinimumSpanningTreeLength[T distmatrix.Integer](m *distmatrix.Matrix[T]) int {
	n := m.N
	if n < 2 {
		return 0
	}

	inTree := make([]bool, n)
	best := make([]int, n)
	for i := range best {
		best[i] = -1
	}
	bestDist := make([]T, n)
	maxV := distmatrix.MaxValue[T]()
	for i := range bestDist {
		bestDist[i] = maxV
	}

	bestDist[0] = 0
	total := 0

	for count := 0; count < n; count++ {
		u := -1
		for v := 0; v < n; v++ {
			if !inTree[v] && (u == -1 || bestDist[v] < bestDist[u]) {
				u = v
			}
		}
		inTree[u] = true
		total += int(bestDist[u])

		for v := 0; v < n; v++ {
			if inTree[v] {
				continue
			}
			d := m.At(u, v)
			if d < bestDist[v] {
				bestDist[v] = d
				best[v] = u
			}
		}
	}

	return total
}
