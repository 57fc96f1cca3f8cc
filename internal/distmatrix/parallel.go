package distmatrix

import (
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/cohesort/cohesort/internal/sketch"
)

// BuildFromSketchesParallel computes the same matrix as
// BuildFromSketches but farms the pairwise scoring loop out across pool.
// Each row i writes only into D[i*N+i+1 .. ] and its symmetric mirror
// cells, which are disjoint across rows, so the result is byte-for-byte
// identical to the serial path regardless of goroutine scheduling order.
func BuildFromSketchesParallel(sketches []*sketch.Sketch, pool *ants.Pool) *Matrix[uint8] {
	n := len(sketches)
	m := New[uint8](n)
	if n < 2 {
		return m
	}

	var wg sync.WaitGroup
	for i := 0; i < n-1; i++ {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			row := rowScores(sketches, i)
			for k, j := 0, i+1; j < n; k, j = k+1, j+1 {
				m.Set(i, j, row[k])
			}
		}
		if pool == nil {
			task()
			continue
		}
		if err := pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	return m
}
