// Package scheduler executes a task graph: it seeds the run from nodes with no
// predecessors, reacts to each completion by releasing successors, and reports
// when the whole graph has drained.
//
// # Readiness
//
// Before dispatching anything the scheduler gives every node a self-bias of one
// and one more for each incoming edge. It then releases the self-bias of every
// node. Release is a single atomic decrement; the caller that observes the
// pre-decrement value 1 owns the node and dispatches it. The same rule applies
// when a completed node releases its successors, so roots need no special
// handling and a node raced by many predecessors is dispatched exactly once.
//
// # Draining
//
// Dispatch goes through a scope.Scope. A completion continuation runs while its
// own operation is still counted, so successors it spawns are registered before
// the count can reach zero. The Completion returned by Run fires once the scope
// has drained.
//
// # Failures
//
// What happens downstream of a failed or cancelled node is decided by the
// FailurePolicy. In every policy each node is still dispatched exactly once and
// the completion signal still fires exactly once.
package scheduler
