// Package distmatrix implements the symmetric pairwise distance matrix
// derived from sketch similarity, and the per-node neighbor table
// built on top of it.
//
// Both are generic over an integer distance type: production uses u8
// (similarity quantizes to 255 levels), but tests exercise wider
// integer distances (e.g. truncated Euclidean distances for geometric
// fixtures).
package distmatrix

import (
	"math"

	"github.com/cohesort/cohesort/internal/sketch"
)

// Integer is the generic bound for distance values: any unsigned integer
// width, ordered, with a zero value and a computable max.
type Integer interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Matrix is a dense, row-major N×N symmetric distance matrix.
type Matrix[T Integer] struct {
	N int
	D []T
}

// New allocates a zeroed N×N matrix.
func New[T Integer](n int) *Matrix[T] {
	return &Matrix[T]{N: n, D: make([]T, n*n)}
}

// At returns D[i,j].
func (m *Matrix[T]) At(i, j int) T { return m.D[i*m.N+j] }

// Set writes D[i,j] = D[j,i] = v.
func (m *Matrix[T]) Set(i, j int, v T) {
	m.D[i*m.N+j] = v
	m.D[j*m.N+i] = v
}

// MaxValue returns the maximum representable value of T, used as a
// sentinel by the optimizers when scanning for a minimum.
func MaxValue[T Integer]() T {
	var zero T
	return zero - 1
}

// BuildFromSketches derives the quantized u8 distance matrix from a set
// of sketches: D[i,j] = 255 - floor(score(i,j) * 255), diagonal zero.
// This is the single-threaded reference path; BuildFromSketchesParallel
// computes the identical matrix by farming rows out to a worker pool.
func BuildFromSketches(sketches []*sketch.Sketch) *Matrix[uint8] {
	n := len(sketches)
	m := New[uint8](n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			m.Set(i, j, quantize(sketch.Score(sketches[i], sketches[j])))
		}
	}
	return m
}

func quantize(score float64) uint8 {
	return uint8(255 - int(math.Floor(score*255)))
}

// rowScores computes, for row i, the quantized distances to every j in
// [i+1, n) and returns them in j order. It is the unit of work
// BuildFromSketchesParallel fans out across a worker pool: each row is
// an independent, disjoint write into D, so farming rows to goroutines
// cannot reorder or race the result regardless of scheduling.
func rowScores(sketches []*sketch.Sketch, i int) []uint8 {
	n := len(sketches)
	out := make([]uint8, n-i-1)
	for k, j := 0, i+1; j < n; k, j = k+1, j+1 {
		out[k] = quantize(sketch.Score(sketches[i], sketches[j]))
	}
	return out
}
