// Package pool provides the bounded worker pool that task-graph work is
// dispatched onto.
package pool

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrClosed is returned by Submit once the pool has been closed.
var ErrClosed = errors.New("worker pool is closed")

// Pool runs submitted functions with at most Workers of them executing at
// once. Submit never blocks: functions beyond the bound are queued and start
// in submission order as slots free up, so work submitted from inside a
// running function cannot deadlock the pool.
type Pool struct {
	workers int
	sem     *semaphore.Weighted

	qmu   sync.Mutex
	queue []func()

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	active atomic.Int32
	peak   atomic.Int32
	ran    atomic.Int64
}

// New creates a pool with the given number of workers. A non-positive count
// uses GOMAXPROCS.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{
		workers: workers,
		sem:     semaphore.NewWeighted(int64(workers)),
	}
}

// Submit schedules fn to run on the pool.
func (p *Pool) Submit(fn func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	p.qmu.Lock()
	p.queue = append(p.queue, fn)
	p.qmu.Unlock()

	p.wg.Add(1)
	go p.work()
	return nil
}

// work takes a slot, then runs the oldest queued function. Slot holders pop
// the queue rather than their own function, so start order follows
// submission order whichever goroutine wins the slot.
func (p *Pool) work() {
	defer p.wg.Done()
	// Background never cancels, so Acquire only returns once a slot is free.
	_ = p.sem.Acquire(context.Background(), 1)
	defer p.sem.Release(1)

	fn := p.next()

	p.track(p.active.Add(1))
	defer p.active.Add(-1)

	p.ran.Add(1)
	fn()
}

// next pops the head of the queue. Every work goroutine is started after its
// own push, so the queue is never empty here.
func (p *Pool) next() func() {
	p.qmu.Lock()
	defer p.qmu.Unlock()
	fn := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return fn
}

// Close stops accepting work and waits for everything already submitted.
// Functions that are still running may not submit further work once Close
// has been called.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the pool's parallelism bound.
func (p *Pool) Workers() int { return p.workers }

// Peak returns the highest number of functions observed running at once.
func (p *Pool) Peak() int { return int(p.peak.Load()) }

// Ran returns how many submitted functions have started.
func (p *Pool) Ran() int64 { return p.ran.Load() }

func (p *Pool) track(active int32) {
	for {
		peak := p.peak.Load()
		if active <= peak || p.peak.CompareAndSwap(peak, active) {
			return
		}
	}
}
