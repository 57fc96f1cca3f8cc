// Package tsp implements the nearest-neighbor tour builder and the
// 2-opt local-search improver.
package tsp

import (
	"github.com/cohesort/cohesort/internal/distmatrix"
	"github.com/cohesort/cohesort/internal/tour"
)

// NearestNeighborTour greedily extends a tour from start, preferring the
// next node from the precomputed neighbor list and falling back to a
// full scan only when every neighbor candidate is already visited.
func NearestNeighborTour[T distmatrix.Integer](m *distmatrix.Matrix[T], neigh distmatrix.Table, start int) []int {
	n := m.N
	visited := make([]bool, n)
	order := make([]int, 0, n)

	order = append(order, start)
	visited[start] = true
	last := start

	for len(order) < n {
		next := -1
		for _, cand := range neigh[last] {
			if !visited[cand] {
				next = cand
				break
			}
		}
		if next == -1 {
			best := distmatrix.MaxValue[T]()
			for j := 0; j < n; j++ {
				if visited[j] {
					continue
				}
				d := m.At(last, j)
				if next == -1 || d < best {
					best = d
					next = j
				}
			}
		}
		order = append(order, next)
		visited[next] = true
		last = next
	}

	return order
}

// minimumItems is the smallest tour size 2-opt can meaningfully act on;
// callers below this size should treat the optimizer as a no-op
// (InputTooSmall, per the error-handling design).
const minimumItems = 3

// TwoOpt runs 2-opt to local-search convergence over initialPerm and
// returns the resulting permutation. Requires at least minimumItems
// nodes; for anything smaller the input order is returned unchanged.
func TwoOpt[T distmatrix.Integer](m *distmatrix.Matrix[T], neigh distmatrix.Table, initialPerm []int) []int {
	if len(initialPerm) < minimumItems {
		return append([]int(nil), initialPerm...)
	}

	t := tour.New(initialPerm)
	n := len(initialPerm)

	for {
		improved := false
		// Bases are visited in current tour order, position by position.
		for p := 0; p < n; p++ {
			if improve(m, neigh, t, t.At(p)) {
				improved = true
			}
		}
		if !improved {
			break
		}
	}

	return t.Indices()
}

// improve attempts one 2-opt move anchored at node base, applying the
// first improving move found among base's neighbor candidates.
func improve[T distmatrix.Integer](m *distmatrix.Matrix[T], neigh distmatrix.Table, t *tour.Tour, base int) bool {
	b2 := t.Next(base)
	d1 := int(m.At(base, b2))

	for _, c := range neigh[base] {
		if t.AreNeighbors(base, c) {
			continue
		}
		c2 := t.Next(c)
		if c2 == base || c2 == b2 {
			continue
		}

		d2 := int(m.At(c, c2))
		d3 := int(m.At(c2, b2))
		d4 := int(m.At(base, c))

		if d1+d2 > d3+d4 {
			if t.SimpleBetween(c, base, c2) {
				t.Flip(base, c2)
			} else {
				t.Flip(b2, c)
			}
			return true
		}
	}

	return false
}
