package graph

import (
	"fmt"
	"sync"

	"github.com/vk/taskflow/internal/node"
	"github.com/vk/taskflow/internal/work"
)

// Graph is an arena of task nodes plus the precedence edges between them.
type Graph struct {
	mu     sync.RWMutex
	nodes  []*node.Node
	byName map[string]node.ID
	edges  int
	sealed bool
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		byName: make(map[string]node.ID),
	}
}

// AddNode stores unit as a new node and returns its handle. An empty name is
// replaced with "node-<id>". When several nodes share a name, Lookup resolves
// to the first one added.
//
// Adding nodes to a sealed graph is a programming error and panics.
func (g *Graph) AddNode(name string, unit work.Unit) node.ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sealed {
		panic(fmt.Sprintf("graph: AddNode(%q) after the run started", name))
	}

	id := node.ID(len(g.nodes))
	if name == "" {
		name = fmt.Sprintf("node-%d", id)
	}
	g.nodes = append(g.nodes, node.New(id, name, unit))
	if _, exists := g.byName[name]; !exists {
		g.byName[name] = id
	}
	return id
}

// Precede declares that from must complete before to is dispatched.
func (g *Graph) Precede(from, to node.ID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sealed {
		return fmt.Errorf("cannot add edge %d -> %d: %w", from, to, ErrSealed)
	}
	if !g.owns(from) {
		return fmt.Errorf("source %d: %w", from, ErrUnknownNode)
	}
	if !g.owns(to) {
		return fmt.Errorf("destination %d: %w", to, ErrUnknownNode)
	}
	if from == to {
		return fmt.Errorf("%s -> %s: %w", g.nodes[from].Name(), g.nodes[to].Name(), ErrSelfEdge)
	}

	g.nodes[from].AddSuccessor(to)
	g.edges++
	return nil
}

// Seal freezes the graph's structure. It returns false if the graph was
// already sealed, which means another run owns it.
func (g *Graph) Seal() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sealed {
		return false
	}
	g.sealed = true
	return true
}

// Sealed reports whether the graph's run has started.
func (g *Graph) Sealed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.sealed
}

// Node returns the node for a handle.
func (g *Graph) Node(id node.ID) (*node.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.owns(id) {
		return nil, false
	}
	return g.nodes[id], true
}

// Lookup resolves a node name to its handle.
func (g *Graph) Lookup(name string) (node.ID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	id, ok := g.byName[name]
	return id, ok
}

// Nodes returns the nodes in insertion order. The returned slice is the
// graph's arena and must not be modified.
func (g *Graph) Nodes() []*node.Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.nodes
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// EdgeCount returns the number of declared edges.
func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edges
}

// Predecessors returns the handles of the nodes that precede id. It walks
// every edge and is intended for diagnostics, not for the hot path.
func (g *Graph) Predecessors(id node.ID) []node.ID {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var preds []node.ID
	for _, n := range g.nodes {
		for _, s := range n.Successors() {
			if s == id {
				preds = append(preds, n.ID())
			}
		}
	}
	return preds
}

func (g *Graph) owns(id node.ID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}
