// Package parallel provides chunked worker helpers for side-effect-free
// batch work: parallel scoring, per-label sub-training and gradient
// accumulation. Work is split into contiguous index ranges so callers can
// write results into disjoint slices without locking.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items across one worker per available CPU core and
// executes fn for each contiguous range (start, end).
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWorkers(items, runtime.NumCPU(), func(_, start, end int) {
		fn(start, end)
	})
}

// ParallelizeWorkers divides items across at most workers goroutines and
// executes fn for each contiguous range. The worker index is passed through
// so callers can keep per-worker accumulators and merge them afterwards in a
// fixed order. workers <= 0 means one worker per CPU core.
func ParallelizeWorkers(items, workers int, fn func(worker, start, end int)) {
	if items == 0 {
		return
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > items {
		workers = items
	}

	// Ceiling division so the last chunk absorbs the remainder.
	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			fn(w, s, e)
		}(i, start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs sequentially when items is at or below the
// threshold, in parallel otherwise. Small batches are not worth the
// goroutine overhead.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}

	Parallelize(items, fn)
}
