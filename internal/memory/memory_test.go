package memory

import "testing"

func TestBufferPool_GetPutTracksStats(t *testing.T) {
	pool := NewBufferPool(1024)

	buf := pool.Get()
	if len(buf) != 1024 {
		t.Fatalf("Get returned a buffer of len %d, want 1024", len(buf))
	}
	copy(buf, []byte("test data"))

	pool.Put(buf)

	stats := pool.Stats()
	if stats.Gets != 1 {
		t.Errorf("expected 1 get, got %d", stats.Gets)
	}
	if stats.Puts != 1 {
		t.Errorf("expected 1 put, got %d", stats.Puts)
	}
}

func TestBufferPool_MismatchedSizeNotPooled(t *testing.T) {
	pool := NewBufferPool(1024)
	foreign := make([]byte, 4096)
	pool.Put(foreign)

	if stats := pool.Stats(); stats.Puts != 0 {
		t.Errorf("expected a mismatched-size buffer not to be pooled, got %d puts", stats.Puts)
	}
}

func TestBufferPool_DefaultsWhenSizeIsZero(t *testing.T) {
	pool := NewBufferPool(0)
	buf := pool.Get()
	if len(buf) == 0 {
		t.Fatal("expected a non-empty default buffer size")
	}
}

func TestEstimateMatrixBytes(t *testing.T) {
	if got := EstimateMatrixBytes(1000); got != 1_000_000 {
		t.Errorf("expected 1000000, got %d", got)
	}
}

func TestCheckWithinBudget(t *testing.T) {
	if err := Check(100, 0); err != nil {
		t.Errorf("zero limit should disable the check: %v", err)
	}
	if err := Check(10, 1<<30); err != nil {
		t.Errorf("small batch under a 1GiB budget should pass: %v", err)
	}
}

func TestCheckOverBudget(t *testing.T) {
	if err := Check(1_000_000, 1); err == nil {
		t.Error("expected an error for a batch far exceeding the budget")
	}
}

func TestQuickStats(t *testing.T) {
	stats := QuickStats()
	if stats == nil {
		t.Fatal("QuickStats returned nil")
	}
	if _, ok := stats["alloc_mb"]; !ok {
		t.Error("missing alloc_mb")
	}
	if _, ok := stats["goroutines"]; !ok {
		t.Error("missing goroutines")
	}
}

func BenchmarkBufferPool(b *testing.B) {
	pool := NewBufferPool(1024)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := pool.Get()
			copy(buf, []byte("benchmark data"))
			pool.Put(buf)
		}
	})
}
