package scheduler

import (
	"fmt"
	"strings"

	"github.com/vk/taskflow/internal/scope"
	"github.com/vk/taskflow/internal/work"
)

// FailurePolicy decides what happens to the successors of a node that did not
// succeed.
type FailurePolicy int

const (
	// SkipDependents completes every transitive successor of a failed or
	// cancelled node as Skipped without running its unit.
	SkipDependents FailurePolicy = iota
	// Continue runs successors as if their predecessor had succeeded.
	Continue
	// FailFast skips dependents and also cancels the run's context, so work
	// that has not started yet completes as Cancelled.
	FailFast
)

func (p FailurePolicy) String() string {
	switch p {
	case SkipDependents:
		return "skip"
	case Continue:
		return "continue"
	case FailFast:
		return "fail-fast"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParseFailurePolicy converts a policy name as used in configuration.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip", "skip-dependents":
		return SkipDependents, nil
	case "continue":
		return Continue, nil
	case "fail-fast", "failfast":
		return FailFast, nil
	default:
		return 0, fmt.Errorf("unknown failure policy %q: must be 'skip', 'continue' or 'fail-fast'", s)
	}
}

// Observer is notified as nodes move through a run. Calls come from worker
// goroutines and may be concurrent.
type Observer interface {
	OnDispatch(name string)
	OnComplete(name string, res work.Result)
}

type nopObserver struct{}

func (nopObserver) OnDispatch(string)               {}
func (nopObserver) OnComplete(string, work.Result) {}

type options struct {
	workers    int
	policy     FailurePolicy
	observer   Observer
	dispatcher scope.Dispatcher
	runID      string
}

// Option configures a run.
type Option func(*options)

// WithWorkers sets the size of the worker pool the run creates for itself.
// It is ignored when WithDispatcher is used.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithFailurePolicy sets the downstream failure behaviour.
func WithFailurePolicy(p FailurePolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithObserver registers an observer for dispatch and completion events.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithDispatcher runs the graph on a caller-owned pool. The run never closes it.
func WithDispatcher(d scope.Dispatcher) Option {
	return func(o *options) { o.dispatcher = d }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(o *options) { o.runID = id }
}
