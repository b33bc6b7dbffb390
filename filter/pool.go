package filter

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrPoolStopped is returned when work is submitted to a stopped pool
var ErrPoolStopped = errors.New("worker pool is stopped")

// workerPool implements WorkerPool with a fixed number of goroutines
type workerPool struct {
	work     chan func()
	stopOnce sync.Once
	stopped  atomic.Bool
	mu       sync.RWMutex // guards sends on work against close
	wg       sync.WaitGroup
}

// NewWorkerPool starts a pool with the given number of workers
func NewWorkerPool(workers int) WorkerPool {
	workers = max(workers, 1)

	p := &workerPool{
		work: make(chan func(), workers*2),
	}

	for range workers {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for work := range p.work {
		if work != nil {
			work()
		}
	}
}

// Submit queues work for the pool
func (p *workerPool) Submit(ctx context.Context, work func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped.Load() {
		return ErrPoolStopped
	}

	select {
	case p.work <- work:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the pool and waits for workers to drain the queue
func (p *workerPool) Stop(ctx context.Context) error {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.stopped.Store(true)
		close(p.work)
		p.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
