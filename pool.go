package txt2pdf

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps the automatic chunk pool.
	MaxPoolSize = 8

	// MaxWorkers is the largest explicit worker count accepted.
	MaxWorkers = 32

	// DefaultFileWorkers bounds the outer pool across files.
	DefaultFileWorkers = 4

	// cpuDivisor leaves headroom for the outer file pool.
	cpuDivisor = 2
)

// ResolvePoolSize determines the optimal pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	// Explicit value takes priority
	if workers > 0 {
		return workers
	}

	// Auto-calculate based on GOMAXPROCS (adjusted by automaxprocs for containers)
	n := runtime.GOMAXPROCS(0) / cpuDivisor
	return min(max(n, MinPoolSize), MaxPoolSize)
}

// runBounded calls fn for indices [0, n) with at most limit running at once.
// Submission blocks while the pool is full. Errors from fn never cancel
// siblings. done is called exactly once per index, serialized, in
// completion order; indices that never started because ctx ended get
// ctx.Err(). A panic in fn is reported to done as an error.
func runBounded(ctx context.Context, limit, n int, fn func(ctx context.Context, i int) error, done func(i int, err error)) {
	if n <= 0 {
		return
	}
	limit = min(max(limit, 1), n)

	var mu sync.Mutex
	finish := func(i int, err error) {
		mu.Lock()
		defer mu.Unlock()
		done(i, err)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range n {
		if err := ctx.Err(); err != nil {
			finish(i, err)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				finish(i, err)
				return nil
			}
			finish(i, safeCall(ctx, i, fn))
			return nil
		})
	}
	_ = g.Wait()
}

func safeCall(ctx context.Context, i int, fn func(ctx context.Context, i int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return fn(ctx, i)
}
