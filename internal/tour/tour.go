// Package tour implements the cyclic tour representation: a
// permutation with O(1) next/prev via an inverse index, and in-place
// segment reversal.
package tour

// Tour is a cyclic permutation of {0,...,N-1}, represented as parallel
// perm/inv arrays with inv[perm[p]] = p for every position p.
type Tour struct {
	perm []int
	inv  []int
}

// New builds a Tour from an initial permutation, computing its inverse
// in O(N).
func New(perm []int) *Tour {
	t := &Tour{
		perm: append([]int(nil), perm...),
		inv:  make([]int, len(perm)),
	}
	for p, v := range t.perm {
		t.inv[v] = p
	}
	return t
}

// Len returns the number of nodes in the tour.
func (t *Tour) Len() int { return len(t.perm) }

// Indices returns the tour's current permutation as an index slice, in
// visiting order. The caller owns the returned slice.
func (t *Tour) Indices() []int {
	out := make([]int, len(t.perm))
	copy(out, t.perm)
	return out
}

// PositionOf returns the position of node v in the tour.
func (t *Tour) PositionOf(v int) int { return t.inv[v] }

// At returns the node at position p.
func (t *Tour) At(p int) int { return t.perm[p] }

// Next returns the node immediately after v in tour order.
func (t *Tour) Next(v int) int {
	n := len(t.perm)
	return t.perm[(t.inv[v]+1)%n]
}

// Prev returns the node immediately before v in tour order.
func (t *Tour) Prev(v int) int {
	n := len(t.perm)
	return t.perm[(t.inv[v]-1+n)%n]
}

// AreNeighbors reports whether a and b are adjacent in tour order (in
// either direction).
func (t *Tour) AreNeighbors(a, b int) bool {
	return t.Next(a) == b || t.Prev(a) == b
}

// Flip reverses the contiguous segment of the tour whose endpoints sit
// at positions inv[a] and inv[b], inclusive, updating inv in lockstep.
// Panics if a == b.
func (t *Tour) Flip(a, b int) {
	if a == b {
		panic("tour: flip requires distinct endpoints")
	}
	lo, hi := t.inv[a], t.inv[b]
	if lo > hi {
		lo, hi = hi, lo
	}
	for lo < hi {
		t.perm[lo], t.perm[hi] = t.perm[hi], t.perm[lo]
		t.inv[t.perm[lo]] = lo
		t.inv[t.perm[hi]] = hi
		lo++
		hi--
	}
}

// SimpleBetween reports whether c's position lies strictly between a's
// and b's positions on the underlying array — a linear-position test,
// not a cyclic one.
func (t *Tour) SimpleBetween(a, b, c int) bool {
	pa, pb, pc := t.inv[a], t.inv[b], t.inv[c]
	lo, hi := pa, pb
	if lo > hi {
		lo, hi = hi, lo
	}
	return pc > lo && pc < hi
}

// Length returns the total cyclic tour distance under the given
// distance matrix accessor.
func (t *Tour) Length(dist func(a, b int) int) int {
	total := 0
	n := len(t.perm)
	for p := 0; p < n; p++ {
		a := t.perm[p]
		b := t.perm[(p+1)%n]
		total += dist(a, b)
	}
	return total
}
