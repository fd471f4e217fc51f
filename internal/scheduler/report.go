package scheduler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vk/taskflow/internal/node"
	"github.com/vk/taskflow/internal/work"
)

// NodeReport is the final record of one node.
type NodeReport struct {
	Name    string
	State   node.State
	Outcome work.Outcome
	Err     error
	Start   time.Time
	End     time.Time
}

// Duration is how long the node's unit ran.
func (n NodeReport) Duration() time.Duration {
	if n.End.IsZero() {
		return 0
	}
	return n.End.Sub(n.Start)
}

// Report summarises a drained run. Nodes are in graph insertion order.
type Report struct {
	RunID      string
	Policy     FailurePolicy
	Started    time.Time
	Elapsed    time.Duration
	Dispatched int
	Nodes      []NodeReport
	// Stalled lists nodes that were never dispatched.
	Stalled []string
}

// Count returns how many completed nodes had the given outcome.
func (r *Report) Count(o work.Outcome) int {
	count := 0
	for _, n := range r.Nodes {
		if n.State == node.Completed && n.Outcome == o {
			count++
		}
	}
	return count
}

// Node returns the report for the first node with the given name.
func (r *Report) Node(name string) (NodeReport, bool) {
	for _, n := range r.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return NodeReport{}, false
}

// Err aggregates the root causes of an unsuccessful run. Skipped nodes are
// symptoms and are left out. It returns nil when every node succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, n := range r.Nodes {
		if n.State != node.Completed {
			continue
		}
		switch n.Outcome {
		case work.Failed, work.Cancelled:
			errs = append(errs, fmt.Errorf("node %q %s: %w", n.Name, n.Outcome, n.Err))
		}
	}
	if len(r.Stalled) > 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrStalled, strings.Join(r.Stalled, ", ")))
	}
	return errors.Join(errs...)
}
