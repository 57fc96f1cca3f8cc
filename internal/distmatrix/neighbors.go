package distmatrix

import "container/heap"

// NeighborCount (K) is the number of nearest neighbors retained per node.
const NeighborCount = 15

// Table holds, for each node, its K nearest neighbors by distance,
// sorted ascending; a node never lists itself.
type Table [][]int

// Build constructs the neighbor table for m using a bounded max-heap of
// size k per node: the current farthest of the k candidates kept sits at
// the heap root, so maintaining the k smallest takes O(log k) per probe.
func Build[T Integer](m *Matrix[T], k int) Table {
	table := make(Table, m.N)
	for i := 0; i < m.N; i++ {
		table[i] = nearest(m, i, k)
	}
	return table
}

type candidate[T Integer] struct {
	idx  int
	dist T
}

type candHeap[T Integer] []candidate[T]

func (h candHeap[T]) Len() int           { return len(h) }
func (h candHeap[T]) Less(i, j int) bool { return h[i].dist > h[j].dist }
func (h candHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *candHeap[T]) Push(x interface{}) {
	*h = append(*h, x.(candidate[T]))
}
func (h *candHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

func nearest[T Integer](m *Matrix[T], node, k int) []int {
	var h candHeap[T]
	for j := 0; j < m.N; j++ {
		if j == node {
			continue
		}
		d := m.At(node, j)
		if len(h) < k {
			heap.Push(&h, candidate[T]{idx: j, dist: d})
			continue
		}
		if d < h[0].dist {
			h[0] = candidate[T]{idx: j, dist: d}
			heap.Fix(&h, 0)
		}
	}

	// h holds the k nearest candidates but not in distance order; pop the
	// heap (largest first) to fill sorted from the back.
	sorted := make([]int, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		top := heap.Pop(&h).(candidate[T])
		sorted[i] = top.idx
	}
	return sorted
}
