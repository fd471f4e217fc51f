// Package graph owns the task nodes of a single run and the precedence edges
// declared between them.
//
// # Ownership
//
// Nodes live in an arena (a slice) for the lifetime of the run. All references
// between nodes are node.ID handles into that arena, so concurrently running
// continuations share nodes without reference counting.
//
// # Lifecycle
//
//  1. **Construction:** AddNode and Precede, from any goroutine.
//  2. **Seal:** the scheduler seals the graph when the run starts. From then on
//     successor lists are immutable and need no synchronization.
//  3. **Execution:** only the nodes' atomic counters and states change.
//  4. **Disposal:** the graph is discarded once the run's completion signal fires.
//
// The graph does not check that its edges form a DAG. A cycle leaves the nodes
// on it waiting forever; the scheduler reports them as stalled once everything
// else has drained.
package graph
