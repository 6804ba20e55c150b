package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversAllItems(t *testing.T) {
	const items = 1000
	seen := make([]int32, items)

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
	})

	for i, count := range seen {
		if count != 1 {
			t.Fatalf("item %d visited %d times, want exactly once", i, count)
		}
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) {
		called = true
	})
	if called {
		t.Error("fn should not be called for zero items")
	}
}

func TestParallelizeWorkersDisjointRanges(t *testing.T) {
	const items = 37
	const workers = 4

	partials := make([]int, workers)
	ParallelizeWorkers(items, workers, func(worker, start, end int) {
		for i := start; i < end; i++ {
			partials[worker] += i
		}
	})

	total := 0
	for _, p := range partials {
		total += p
	}
	want := items * (items - 1) / 2
	if total != want {
		t.Errorf("sum over chunks = %d, want %d", total, want)
	}
}

func TestParallelizeWorkersMoreWorkersThanItems(t *testing.T) {
	var visits int32
	ParallelizeWorkers(3, 16, func(worker, start, end int) {
		atomic.AddInt32(&visits, int32(end-start))
	})
	if visits != 3 {
		t.Errorf("visited %d items, want 3", visits)
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	ranges := 0
	ParallelizeWithThreshold(10, 100, func(start, end int) {
		ranges++
		if start != 0 || end != 10 {
			t.Errorf("sequential path should see the full range, got (%d, %d)", start, end)
		}
	})
	if ranges != 1 {
		t.Errorf("sequential path should invoke fn once, got %d", ranges)
	}
}
