package workers

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many CPU-heavy jobs (sanity counts, compression) run at
// once. Callers hand work to the pool and wait for the result.
type Pool struct {
	sem *semaphore.Weighted
}

// NewPool returns a pool admitting size concurrent jobs; size < 1 means 1.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size))}
}

// Do runs fn in the calling goroutine once a pool slot is free. ctx only
// bounds the wait for the slot: fn has returned whenever Do returns, so it
// has to watch ctx itself.
func Do[T any](ctx context.Context, p *Pool, fn func() (T, error)) (T, error) {
	var zero T
	if p == nil {
		return fn()
	}

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, err
	}
	defer p.sem.Release(1)

	return fn()
}
