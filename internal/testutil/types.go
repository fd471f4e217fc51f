package testutil

import (
	"time"

	"github.com/vk/taskflow/internal/work"
)

// ExecutionRecord holds what a Recorder observed for one node.
type ExecutionRecord struct {
	// Start and End bracket the unit's body when it was built by Recorder.Sleeper.
	Start time.Time
	End   time.Time

	// DispatchSeq and CompleteSeq are positions in the recorder's global event
	// order, so ordering checks do not depend on clock resolution.
	DispatchSeq int64
	CompleteSeq int64

	Dispatches  int
	Completions int
	Runs        int
	Outcome     work.Outcome
}
