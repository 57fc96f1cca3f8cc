package parallel

import (
	"runtime"

	"github.com/panjf2000/ants/v2"
)

// NewPool creates an ants goroutine pool, the shared worker pool the
// orchestrator submits sketch-building and distance-scoring tasks to.
// A size of zero or less falls back to the host's CPU count.
func NewPool(size int) (*ants.Pool, error) {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	return ants.NewPool(size, ants.WithPreAlloc(false))
}
