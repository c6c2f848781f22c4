// Package parallel splits row ranges across CPU cores.
package parallel

import (
	"runtime"
	"sync"
)

// Workers is the number of chunks ForChunks splits a range into at most.
func Workers() int { return runtime.GOMAXPROCS(0) }

// Group runs functions on their own goroutines. A panic in any of them is
// recovered and raised again from Wait, on the caller's goroutine.
type Group struct {
	wg    sync.WaitGroup
	mu    sync.Mutex
	p     any
	fired bool
}

func (g *Group) Go(fn func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.mu.Lock()
				if !g.fired {
					g.p, g.fired = r, true
				}
				g.mu.Unlock()
			}
		}()
		fn()
	}()
}

// Wait blocks until every function has returned, then re-panics with the
// first recovered value, if any.
func (g *Group) Wait() {
	g.wg.Wait()
	if g.fired {
		panic(g.p)
	}
}

// ForChunks calls fn once per contiguous [start, end) chunk of [0, n), one goroutine
// per chunk, and waits for all of them. Chunks never overlap, so fn may write to
// disjoint indices of a shared output slice without locking. A panic in fn
// reaches the caller once every chunk has finished.
func ForChunks(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := Workers()
	rowsPerWorker := (n + workers - 1) / workers

	var g Group
	for w := 0; w < workers; w++ {
		start := w * rowsPerWorker
		end := min(start+rowsPerWorker, n)
		if start >= end {
			continue
		}
		g.Go(func() { fn(start, end) })
	}
	g.Wait()
}

// ForEach runs fn(i) for every i in [0, n) across the available cores.
func ForEach(n int, fn func(i int)) {
	ForChunks(n, func(start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}
