// Package worker runs detached jobs on a fixed number of goroutines.
package worker

import (
	"context"
	"sync"
)

// Job is a unit of work submitted to the Pool
type Job func(ctx context.Context) error

// Pool runs jobs using a fixed number of goroutines.
// Job errors go to the handler given to Start; the submitter never waits on them.
type Pool struct {
	jobs      chan Job
	done      chan struct{}
	wg        sync.WaitGroup
	workers   int
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewPool creates a pool with the given number of workers and queue capacity
func NewPool(workers, queue int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queue <= 0 {
		queue = workers * 2
	}
	return &Pool{
		jobs:    make(chan Job, queue),
		done:    make(chan struct{}),
		workers: workers,
	}
}

// Start launches the workers. They run until ctx is done or Close drained the queue.
// onError may be nil.
func (p *Pool) Start(ctx context.Context, onError func(error)) {
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
					if err := job(ctx); err != nil && onError != nil {
						onError(err)
					}
				}
			}
		}()
	}
}

// TrySubmit enqueues a job without blocking; ErrQueueFull means it was dropped
func (p *Pool) TrySubmit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	case <-p.done:
		return ErrPoolClosed
	default:
		return ErrQueueFull
	}
}

// Pending reports the number of queued jobs not yet picked up
func (p *Pool) Pending() int {
	return len(p.jobs)
}

// Close stops accepting jobs, lets the workers drain the queue and waits for them
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

var (
	// ErrPoolClosed is returned if a TrySubmit is attempted after Close
	ErrPoolClosed = &PoolError{"worker pool closed"}
	// ErrQueueFull is returned by TrySubmit when every queue slot is taken
	ErrQueueFull = &PoolError{"worker pool queue full"}
)

// PoolError provides a simple typed error for pool operations
type PoolError struct{ msg string }

func (e *PoolError) Error() string { return e.msg }
