// Package workerpool runs CPU-bound jobs, such as comment segmentation, on a
// fixed number of goroutines.
package workerpool

import (
	"context"
	"sync"
)

// Job is a unit of work submitted to the Pool.
type Job func(ctx context.Context) error

// Pool runs jobs using a fixed number of goroutines. The first error returned
// by a job is kept and reported by Err.
type Pool struct {
	jobs    chan Job
	quit    chan struct{}
	wg      sync.WaitGroup
	workers int

	// mu guards closed and the jobs channel against sends after close.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once

	errMu    sync.Mutex
	firstErr error
}

// New creates a pool with the given number of workers and job queue capacity.
func New(workers, queue int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &Pool{
		jobs:    make(chan Job, queue),
		quit:    make(chan struct{}),
		workers: workers,
	}
}

// Workers reports the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Start launches the workers. They run until ctx is done or Close is called
// and the queue is drained.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-p.jobs:
					if !ok {
						return
					}
					if err := job(ctx); err != nil {
						p.errMu.Lock()
						if p.firstErr == nil {
							p.firstErr = err
						}
						p.errMu.Unlock()
					}
				}
			}
		}()
	}
}

// Submit enqueues a job, blocking while the queue is full. It returns
// ErrPoolClosed if the pool is closed before the job is accepted.
func (p *Pool) Submit(job Job) error {
	return p.SubmitCtx(context.Background(), job)
}

// SubmitCtx is like Submit but gives up when ctx is canceled.
func (p *Pool) SubmitCtx(ctx context.Context, job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.quit:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new jobs and waits for the workers to finish the
// jobs already queued. Blocked submitters return ErrPoolClosed.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// Err returns the first error returned by a job, if any.
func (p *Pool) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.firstErr
}

// Map applies fn to every element of in using up to workers goroutines and
// returns the results in input order. With one worker, or fewer than two
// inputs, fn runs on the calling goroutine.
func Map[T, R any](ctx context.Context, workers int, in []T, fn func(T) R) ([]R, error) {
	out := make([]R, len(in))
	if workers <= 1 || len(in) < 2 {
		for i, v := range in {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			out[i] = fn(v)
		}
		return out, nil
	}
	if workers > len(in) {
		workers = len(in)
	}

	p := New(workers, workers*2)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.Start(ctx)

	for i := range in {
		i := i
		err := p.SubmitCtx(ctx, func(context.Context) error {
			out[i] = fn(in[i])
			return nil
		})
		if err != nil {
			cancel()
			p.Close()
			return nil, err
		}
	}
	p.Close()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ErrPoolClosed is returned if a Submit is attempted after Close.
var ErrPoolClosed = &PoolError{"worker pool closed"}

// PoolError provides a simple typed error for pool operations.
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
