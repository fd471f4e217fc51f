// Package work defines the unit of asynchronous work executed by a task graph
// and the terminal outcome it produces.
package work

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// ErrCancelled is returned (or wrapped) by a unit that stopped because its
// context was cancelled.
var ErrCancelled = errors.New("work cancelled")

// Unit is an opaque computation supplied by the caller for one graph node.
// It must run to completion exactly once and must not be reused afterwards.
type Unit func(ctx context.Context) error

// Outcome is the terminal state a Unit completes with.
type Outcome int

const (
	// Success means the unit returned a nil error.
	Success Outcome = iota
	// Failed means the unit returned a non-cancellation error or panicked.
	Failed
	// Cancelled means the unit stopped because its context was done.
	Cancelled
	// Skipped means the unit never ran because an upstream node failed.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	case Skipped:
		return "skipped"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is what a completed unit reports to its continuation.
type Result struct {
	Outcome Outcome
	Err     error
	Start   time.Time
	End     time.Time
}

// OK reports whether the unit succeeded.
func (r Result) OK() bool { return r.Outcome == Success }

// Duration is the wall-clock time the unit took.
func (r Result) Duration() time.Duration { return r.End.Sub(r.Start) }

// PanicError carries a value recovered from a panicking unit.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("work unit panicked: %v", e.Value)
}

// Classify maps an error returned by a unit to its outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, ErrCancelled), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Cancelled
	default:
		return Failed
	}
}

// Run executes u and converts its return value, or a panic, into a Result.
// A context that is already done short-circuits to Cancelled without calling u.
func Run(ctx context.Context, u Unit) (res Result) {
	res.Start = time.Now()
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = Failed
			res.Err = &PanicError{Value: r, Stack: debug.Stack()}
		}
		res.End = time.Now()
	}()

	if err := ctx.Err(); err != nil {
		res.Outcome = Cancelled
		res.Err = fmt.Errorf("%w before start: %w", ErrCancelled, err)
		return res
	}
	if u == nil {
		return res
	}

	err := u(ctx)
	res.Outcome = Classify(err)
	res.Err = err
	return res
}

// WithTimeout bounds a unit's runtime. When the deadline passes the unit's
// context is cancelled and the outcome is Cancelled.
func WithTimeout(u Unit, d time.Duration) Unit {
	if d <= 0 {
		return u
	}
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return u(ctx)
	}
}

// Func adapts a plain function that cannot fail.
func Func(f func()) Unit {
	return func(context.Context) error {
		f()
		return nil
	}
}
