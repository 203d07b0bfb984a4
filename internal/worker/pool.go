// Package worker provides a row-band parallel executor for pixel stages.
package worker

import (
	"runtime"
	"sync"
)

// Config configures the pool.
type Config struct {
	// Workers is the number of goroutines to fan work out to.
	// Values <= 0 use the number of CPUs.
	Workers int
}

// Pool splits row ranges into contiguous bands and runs them in parallel.
// A pool with one worker runs everything sequentially on the calling
// goroutine, which is the single-threaded reference behavior.
type Pool struct {
	workers int
}

// New creates a pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers reports the configured parallelism.
func (p *Pool) Workers() int {
	return p.workers
}

// Rows partitions [0, n) into at most Workers() contiguous bands and invokes
// fn once per band. fn must only write rows within its band. Rows blocks
// until every band has completed.
func (p *Pool) Rows(n int, fn func(lo, hi int)) {
	if n <= 0 {
		return
	}
	workers := p.workers
	if workers > n {
		workers = n
	}
	if workers == 1 {
		fn(0, n)
		return
	}

	band := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += band {
		hi := lo + band
		if hi > n {
			hi = n
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			fn(lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}
