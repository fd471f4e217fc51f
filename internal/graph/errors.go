package graph

import "errors"

var (
	// ErrSealed is returned when the graph is modified after its run started.
	ErrSealed = errors.New("graph is sealed")
	// ErrUnknownNode is returned when an edge references a handle the graph does not own.
	ErrUnknownNode = errors.New("unknown node")
	// ErrSelfEdge is returned when a node is declared to precede itself.
	ErrSelfEdge = errors.New("self-referential edge not allowed")
)
