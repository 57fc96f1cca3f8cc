package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestLockFreeQueue(t *testing.T) {
	queue := NewLockFreeQueue()

	if !queue.IsEmpty() {
		t.Error("new queue should be empty")
	}

	for i := 0; i < 10; i++ {
		queue.Enqueue(i)
	}

	if queue.Len() != 10 {
		t.Errorf("expected len 10, got %d", queue.Len())
	}

	for i := 0; i < 10; i++ {
		value, ok := queue.Dequeue()
		if !ok {
			t.Error("dequeue should succeed")
		}
		if value.(int) != i {
			t.Errorf("expected %d, got %d", i, value.(int))
		}
	}

	if !queue.IsEmpty() {
		t.Error("queue should be empty after dequeue all")
	}
}

func TestLockFreeQueueConcurrent(t *testing.T) {
	queue := NewLockFreeQueue()
	var wg sync.WaitGroup
	numGoroutines := 10
	numItems := 100

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numItems; j++ {
				queue.Enqueue(id*1000 + j)
			}
		}(i)
	}
	wg.Wait()

	expectedLen := int64(numGoroutines * numItems)
	if queue.Len() != expectedLen {
		t.Errorf("expected len %d, got %d", expectedLen, queue.Len())
	}

	var dequeued int64
	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for {
				if _, ok := queue.Dequeue(); ok {
					atomic.AddInt64(&dequeued, 1)
				} else {
					break
				}
			}
		}()
	}
	wg.Wait()

	if dequeued != expectedLen {
		t.Errorf("expected to dequeue %d, got %d", expectedLen, dequeued)
	}
}

func TestAtomicCounter(t *testing.T) {
	counter := NewAtomicCounter(0)

	for i := 0; i < 100; i++ {
		counter.Inc()
	}
	if counter.Get() != 100 {
		t.Errorf("expected 100, got %d", counter.Get())
	}

	counter.Add(-1)
	if counter.Get() != 99 {
		t.Errorf("expected 99, got %d", counter.Get())
	}

	counter.Set(200)
	if counter.Get() != 200 {
		t.Errorf("expected 200, got %d", counter.Get())
	}
}

func TestNewPool(t *testing.T) {
	pool, err := NewPool(4)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var sum int64
	for i := 0; i < 20; i++ {
		wg.Add(1)
		i := i
		if err := pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&sum, int64(i))
		}); err != nil {
			wg.Done()
			t.Errorf("submit: %v", err)
		}
	}
	wg.Wait()

	if sum != 190 {
		t.Errorf("expected sum 190, got %d", sum)
	}
}
