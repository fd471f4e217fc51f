package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/graph"
	"github.com/vk/taskflow/internal/node"
	"github.com/vk/taskflow/internal/pool"
	"github.com/vk/taskflow/internal/scope"
	"github.com/vk/taskflow/internal/work"
)

var (
	// ErrAlreadyRunning is returned when a graph is passed to Run a second time.
	ErrAlreadyRunning = errors.New("graph is already running")
	// ErrSkipped is the error recorded for nodes skipped after an upstream failure.
	ErrSkipped = errors.New("skipped due to upstream failure")
	// ErrStalled is reported when nodes were never dispatched, which happens
	// when the graph's edges contain a cycle.
	ErrStalled = errors.New("nodes never became ready")
)

// run is the state of one graph execution.
type run struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	nodes    []*node.Node
	scope    *scope.Scope
	policy   FailurePolicy
	observer Observer

	dispatched atomic.Int64
}

// Run seals g and starts executing it. It returns as soon as the root nodes
// have been dispatched; the returned Completion fires once every dispatched
// node, and everything it released, has completed.
func Run(ctx context.Context, g *graph.Graph, opts ...Option) (*Completion, error) {
	o := options{observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	if !g.Seal() {
		return nil, ErrAlreadyRunning
	}

	logger := ctxlog.FromContext(ctx).With("run_id", o.runID)
	runCtx, cancel := context.WithCancel(ctxlog.WithLogger(ctx, logger))

	var owned *pool.Pool
	dispatcher := o.dispatcher
	if dispatcher == nil {
		owned = pool.New(o.workers)
		dispatcher = owned
		logger.Debug("Created worker pool.", "workers", owned.Workers())
	}

	r := &run{
		ctx:      runCtx,
		cancel:   cancel,
		logger:   logger,
		nodes:    g.Nodes(),
		scope:    scope.New(dispatcher),
		policy:   o.policy,
		observer: o.observer,
	}
	c := &Completion{
		RunID: o.runID,
		done:  make(chan struct{}),
	}

	started := time.Now()
	logger.Info("Starting graph run.", "nodes", len(r.nodes), "edges", g.EdgeCount(), "policy", r.policy.String())

	roots := r.kickoff()
	logger.Debug("Kickoff complete.", "roots", roots)
	r.scope.Close()

	go func() {
		<-r.scope.OnEmpty()
		cancel()
		if owned != nil {
			owned.Close()
		}
		c.report = r.buildReport(c.RunID, started)
		logger.Info("Graph run drained.",
			"dispatched", c.report.Dispatched,
			"failed", c.report.Count(work.Failed),
			"cancelled", c.report.Count(work.Cancelled),
			"skipped", c.report.Count(work.Skipped),
			"elapsed", c.report.Elapsed,
		)
		close(c.done)
	}()

	return c, nil
}

// kickoff applies the self-bias and edge counts, then releases every node's
// self-bias, dispatching the ones that had no predecessors.
func (r *run) kickoff() int {
	for _, n := range r.nodes {
		n.AddPending()
	}
	for _, n := range r.nodes {
		for _, s := range n.Successors() {
			r.nodes[s].AddPending()
		}
	}

	roots := 0
	for _, n := range r.nodes {
		if n.Release() {
			roots++
			r.dispatch(n)
		}
	}
	return roots
}

// dispatch hands a node that just became ready to the scope.
func (r *run) dispatch(n *node.Node) {
	n.Advance(node.Waiting, node.Ready)

	unit := n.Unit()
	skip := r.policy != Continue && n.UpstreamFailed()
	if skip {
		unit = nil
	}

	n.Advance(node.Ready, node.Dispatched)
	r.dispatched.Add(1)
	r.observer.OnDispatch(n.Name())
	r.logger.Debug("Dispatching node.", "node", n.Name(), "skip", skip)

	err := r.scope.Spawn(r.ctx, unit, func(res work.Result) {
		if skip {
			res.Outcome = work.Skipped
			res.Err = ErrSkipped
		}
		r.complete(n, res)
	})
	if err != nil {
		r.logger.Error("Failed to dispatch node.", "node", n.Name(), "error", err)
	}
}

// complete records a node's result and releases its successors. It runs in
// the scope continuation, before the node's operation stops being counted.
func (r *run) complete(n *node.Node, res work.Result) {
	n.Complete(res)
	r.observer.OnComplete(n.Name(), res)

	logger := r.logger.With("node", n.Name(), "outcome", res.Outcome.String())
	switch res.Outcome {
	case work.Success:
		logger.Debug("Node completed.", "duration", res.Duration())
	case work.Skipped:
		logger.Warn("Skipping node due to upstream failure.")
	default:
		logger.Error("Node did not succeed.", "error", res.Err)
		if r.policy == FailFast {
			r.cancel()
		}
	}

	failed := !res.OK()
	for _, id := range n.Successors() {
		s := r.nodes[id]
		if failed {
			s.MarkUpstreamFailed()
		}
		if s.Release() {
			logger.Debug("Unlocking successor.", "successor", s.Name())
			r.dispatch(s)
		}
	}
}

func (r *run) buildReport(runID string, started time.Time) *Report {
	rep := &Report{
		RunID:      runID,
		Policy:     r.policy,
		Started:    started,
		Elapsed:    time.Since(started),
		Dispatched: int(r.dispatched.Load()),
		Nodes:      make([]NodeReport, 0, len(r.nodes)),
	}
	for _, n := range r.nodes {
		nr := NodeReport{Name: n.Name(), State: n.State()}
		if nr.State == node.Completed {
			res := n.Result()
			nr.Outcome, nr.Err, nr.Start, nr.End = res.Outcome, res.Err, res.Start, res.End
		} else {
			rep.Stalled = append(rep.Stalled, n.Name())
		}
		rep.Nodes = append(rep.Nodes, nr)
	}
	if len(rep.Stalled) > 0 {
		r.logger.Error("Graph drained with nodes that never became ready.", "stalled", rep.Stalled)
	}
	return rep
}

// Completion is the single-fire signal for a run.
type Completion struct {
	// RunID identifies the run in logs and reports.
	RunID string

	done   chan struct{}
	report *Report
}

// Done returns a channel closed once the run has drained.
func (c *Completion) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the run has drained or ctx is done. Once drained, every
// call returns the same report.
func (c *Completion) Wait(ctx context.Context) (*Report, error) {
	select {
	case <-c.done:
		return c.report, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for run %s: %w", c.RunID, ctx.Err())
	}
}

// Report returns the run's report, or nil if it has not drained yet.
func (c *Completion) Report() *Report {
	select {
	case <-c.done:
		return c.report
	default:
		return nil
	}
}
