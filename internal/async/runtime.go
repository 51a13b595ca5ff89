package async

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is used when a runtime is created with a non-positive limit.
const DefaultConcurrency = 4

// Runtime runs work items with a concurrency limit and optional per-item
// timeouts. Every item's outcome is delivered through its Future.
type Runtime struct {
	sem         *semaphore.Weighted
	concurrency int
	wg          sync.WaitGroup
}

// NewRuntime creates a runtime running at most concurrency items at once.
func NewRuntime(concurrency int) *Runtime {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Runtime{
		sem:         semaphore.NewWeighted(int64(concurrency)),
		concurrency: concurrency,
	}
}

// Concurrency returns the limit the runtime was created with.
func (rt *Runtime) Concurrency() int {
	return rt.concurrency
}

// Go schedules fn and returns its future immediately. fn runs once a slot is
// free; if ctx ends first the future resolves with ctx.Err() and fn never
// runs. A positive timeout bounds fn through its context.
func Go[T any](
	ctx context.Context,
	rt *Runtime,
	timeout time.Duration,
	fn func(ctx context.Context) (T, error),
) *Future[T] {
	f := NewFuture[T]()

	rt.wg.Add(1)
	go func() {
		defer rt.wg.Done()

		var zero T
		if err := rt.sem.Acquire(ctx, 1); err != nil {
			f.Resolve(zero, err)
			return
		}
		defer rt.sem.Release(1)

		runCtx := ctx
		if timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		f.Resolve(fn(runCtx))
	}()
	return f
}

// Wait blocks until every scheduled item has finished.
func (rt *Runtime) Wait() {
	rt.wg.Wait()
}
