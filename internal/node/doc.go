// Package node provides the task-graph vertex: a work unit, its successor
// handles and an atomic count of unresolved predecessors.
//
// A node moves through Waiting -> Ready -> Dispatched -> Completed exactly
// once per run. Every transition is a compare-and-swap, so a defect that would
// dispatch a node twice panics instead of silently running the unit again.
package node
