// Package scope tracks in-flight task-graph work, including work spawned
// after the run was kicked off, and exposes a single completion signal that
// fires once all of it has finished.
package scope

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vk/taskflow/internal/work"
)

// ErrDrained is returned by Spawn once the scope's completion signal has fired.
var ErrDrained = errors.New("scope has drained")

// Dispatcher is the worker pool contract the scope relies on: it eventually
// runs every function it accepts.
type Dispatcher interface {
	Submit(fn func()) error
}

// Scope counts outstanding spawned operations.
//
// The count starts at one, held by the opener, so that work finishing during
// kickoff cannot drain the scope before every initial spawn was made. Close
// drops the opener's hold. Each Spawn increments the count before handing the
// unit to the dispatcher and decrements it only after the unit's continuation
// has returned, so a continuation that spawns successors keeps the scope open
// until those successors are registered.
type Scope struct {
	dispatcher Dispatcher

	outstanding atomic.Int64
	spawned     atomic.Int64
	closed      atomic.Bool

	done     chan struct{}
	doneOnce sync.Once
}

// New creates an open scope dispatching onto d.
func New(d Dispatcher) *Scope {
	s := &Scope{
		dispatcher: d,
		done:       make(chan struct{}),
	}
	s.outstanding.Store(1)
	return s
}

// Spawn registers one more outstanding operation and dispatches u. When u
// completes, whatever its outcome, then is called with its result, and only
// afterwards is the operation counted as finished. then may call Spawn.
//
// If the dispatcher rejects the work, then is called synchronously with a
// Failed result and the dispatcher's error is returned.
func (s *Scope) Spawn(ctx context.Context, u work.Unit, then func(work.Result)) error {
	if !s.acquire() {
		return ErrDrained
	}
	s.spawned.Add(1)

	err := s.dispatcher.Submit(func() {
		defer s.release()
		res := work.Run(ctx, u)
		if then != nil {
			then(res)
		}
	})
	if err != nil {
		defer s.release()
		err = fmt.Errorf("dispatching work: %w", err)
		if then != nil {
			then(work.Result{Outcome: work.Failed, Err: err})
		}
		return err
	}
	return nil
}

// Close releases the opener's hold. After Close the completion signal fires
// as soon as the outstanding count reaches zero. Calling Close more than once
// has no further effect.
func (s *Scope) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.release()
	}
}

// OnEmpty returns a channel that is closed exactly once, after Close has been
// called and every spawned operation, continuation included, has finished.
func (s *Scope) OnEmpty() <-chan struct{} {
	return s.done
}

// Drained reports whether the completion signal has fired.
func (s *Scope) Drained() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Outstanding returns the number of spawned operations still in flight.
func (s *Scope) Outstanding() int64 {
	n := s.outstanding.Load()
	if !s.closed.Load() {
		n--
	}
	return n
}

// Spawned returns the total number of operations ever spawned.
func (s *Scope) Spawned() int64 {
	return s.spawned.Load()
}

// acquire increments the outstanding count unless it has already reached zero.
func (s *Scope) acquire() bool {
	for {
		n := s.outstanding.Load()
		if n <= 0 {
			return false
		}
		if s.outstanding.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (s *Scope) release() {
	if s.outstanding.Add(-1) == 0 {
		s.doneOnce.Do(func() { close(s.done) })
	}
}
