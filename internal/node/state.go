package node

import "fmt"

// State is the lifecycle position of a node within one run.
type State int32

const (
	// Waiting means the node still has unresolved predecessors.
	Waiting State = iota
	// Ready means the node's counter reached zero via the winning decrement.
	Ready
	// Dispatched means the node's unit has been handed to the worker pool.
	Dispatched
	// Completed means the node's unit has finished, whatever its outcome.
	Completed
)

func (s State) String() string {
	switch s {
	case Waiting:
		return "waiting"
	case Ready:
		return "ready"
	case Dispatched:
		return "dispatched"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
