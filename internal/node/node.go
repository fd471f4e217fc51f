package node

import (
	"fmt"
	"sync/atomic"

	"github.com/vk/taskflow/internal/work"
)

// ID is a stable handle to a node within the graph that owns it. It is the
// node's index in the graph's arena and is only meaningful for that graph.
type ID int

// Node is a single vertex in the task graph: one work unit, the nodes that
// must wait for it, and the count of predecessors it is still waiting on.
type Node struct {
	id   ID
	name string
	unit work.Unit

	// successors are the nodes released when this one completes, in the order
	// their edges were declared. Immutable once the run starts.
	successors []ID

	// pending is the number of unresolved predecessors, plus the scheduler's
	// self-bias until kickoff.
	pending atomic.Int32
	// state is the node's lifecycle State, advanced by compare-and-swap.
	state atomic.Int32
	// upstreamFailed is set by a failed predecessor before it releases this node.
	upstreamFailed atomic.Bool

	result work.Result
}

// New creates a node wrapping unit.
func New(id ID, name string, unit work.Unit) *Node {
	return &Node{id: id, name: name, unit: unit}
}

// ID returns the node's handle.
func (n *Node) ID() ID { return n.id }

// Name returns the human-readable name given when the node was added.
func (n *Node) Name() string { return n.name }

// Unit returns the node's work unit.
func (n *Node) Unit() work.Unit { return n.unit }

// Successors returns the handles of the nodes this node precedes.
func (n *Node) Successors() []ID { return n.successors }

// AddSuccessor appends a successor handle. Only the graph calls this, and only
// before the run starts.
func (n *Node) AddSuccessor(id ID) {
	n.successors = append(n.successors, id)
}

// AddPending atomically increments the predecessor counter.
func (n *Node) AddPending() {
	n.pending.Add(1)
}

// Pending atomically returns the current predecessor counter.
func (n *Node) Pending() int32 {
	return n.pending.Load()
}

// Release atomically decrements the predecessor counter and reports whether
// the caller observed the 1 -> 0 transition. Exactly one caller wins that
// transition, so exactly one caller may dispatch the node.
func (n *Node) Release() bool {
	// Add returns the post-decrement value; 0 means the pre-decrement value was 1.
	return n.pending.Add(-1) == 0
}

// MarkUpstreamFailed records that a predecessor did not succeed.
func (n *Node) MarkUpstreamFailed() {
	n.upstreamFailed.Store(true)
}

// UpstreamFailed reports whether any predecessor did not succeed.
func (n *Node) UpstreamFailed() bool {
	return n.upstreamFailed.Load()
}

// State atomically returns the node's lifecycle state.
func (n *Node) State() State {
	return State(n.state.Load())
}

// Advance moves the node from one state to the next. It panics if the node is
// not in from, since that means a node was dispatched twice.
func (n *Node) Advance(from, to State) {
	if to != from+1 {
		panic(fmt.Sprintf("node %q: illegal transition %s -> %s", n.name, from, to))
	}
	if !n.state.CompareAndSwap(int32(from), int32(to)) {
		panic(fmt.Sprintf("node %q: expected state %s, found %s", n.name, from, n.State()))
	}
}

// Complete records the unit's result and moves the node to Completed.
func (n *Node) Complete(res work.Result) {
	n.result = res
	n.Advance(Dispatched, Completed)
}

// Result returns the recorded result. It is only meaningful once State is
// Completed and the run's completion signal has fired.
func (n *Node) Result() work.Result {
	return n.result
}
