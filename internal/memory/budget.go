package memory

import (
	"fmt"
	"runtime"
)

// EstimateMatrixBytes returns the size in bytes of the dense N×N
// distance matrix the orchestrator is about to allocate for a batch of
// n targets (one byte per cell, per the u8 production distance type).
func EstimateMatrixBytes(n int) int64 {
	return int64(n) * int64(n)
}

// Check is a one-shot guard run before allocating a batch's distance
// matrix: cohesort is a single invocation, not a long-running service,
// so there is no ongoing monitor loop here — just a pre-flight estimate
// against the current heap plus a caller-supplied ceiling.
func Check(n int, limitBytes int64) error {
	if limitBytes <= 0 {
		return nil
	}

	need := EstimateMatrixBytes(n)

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	if int64(ms.HeapAlloc)+need > limitBytes {
		return fmt.Errorf("memory: batch of %d targets needs ~%d bytes for its distance matrix, exceeding the %d byte budget (current heap %d)",
			n, need, limitBytes, ms.HeapAlloc)
	}
	return nil
}

// QuickStats returns a small snapshot of current heap usage, surfaced
// in verbose/diagnostic output.
func QuickStats() map[string]interface{} {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return map[string]interface{}{
		"alloc_mb":   ms.Alloc / (1 << 20),
		"sys_mb":     ms.Sys / (1 << 20),
		"goroutines": runtime.NumGoroutine(),
		"num_gc":     ms.NumGC,
	}
}
