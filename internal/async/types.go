// Package async provides the completion signals and the concurrency-limited
// runtime linter engines use to run per-file checks.
package async

import (
	"context"
	"errors"
	"sync"
)

// Future is the completion signal of one unit of work. It is resolved
// exactly once; later Resolve calls are ignored.
type Future[T any] struct {
	done chan struct{}
	once sync.Once

	value T
	err   error
}

// NewFuture returns an unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolved returns a future that is already complete.
func Resolved[T any](value T, err error) *Future[T] {
	f := NewFuture[T]()
	f.Resolve(value, err)
	return f
}

// Resolve completes the future. It reports whether this call won.
func (f *Future[T]) Resolve(value T, err error) bool {
	won := false
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
		won = true
	})
	return won
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future is resolved or ctx ends. A resolved future
// wins over a context that ended at the same time.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// SkipReason explains why a unit of work produced no result.
type SkipReason string

const (
	SkipTimeout  SkipReason = "timeout"
	SkipCanceled SkipReason = "canceled"
	SkipError    SkipReason = "error"
)

// Classify maps an error to a skip reason. Errors may carry their own
// reason by implementing SkipReason().
func Classify(err error) SkipReason {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return SkipTimeout
	}
	if errors.Is(err, context.Canceled) {
		return SkipCanceled
	}
	var skipErr interface{ SkipReason() SkipReason }
	if errors.As(err, &skipErr) {
		return skipErr.SkipReason()
	}
	return SkipError
}
