package app

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/node"
	"github.com/vk/taskflow/internal/scheduler"
	"github.com/vk/taskflow/internal/work"
)

func TestRenderSummary(t *testing.T) {
	start := time.Now()
	rep := &scheduler.Report{
		RunID:      "run-1",
		Policy:     scheduler.SkipDependents,
		Elapsed:    250 * time.Millisecond,
		Dispatched: 3,
		Nodes: []scheduler.NodeReport{
			{Name: "fetch", State: node.Completed, Outcome: work.Success, Start: start, End: start.Add(100 * time.Millisecond)},
			{Name: "parse", State: node.Completed, Outcome: work.Failed, Err: errors.New("bad input"), Start: start, End: start.Add(5 * time.Millisecond)},
			{Name: "store", State: node.Completed, Outcome: work.Skipped, Err: scheduler.ErrSkipped},
			{Name: "loop", State: node.Waiting},
		},
		Stalled: []string{"loop"},
	}

	var buf bytes.Buffer
	require.NoError(t, renderSummary(&buf, rep))
	out := buf.String()

	assert.Contains(t, out, "Run run-1 (skip) finished in 250ms")
	assert.Regexp(t, `TASK\s+OUTCOME\s+DURATION\s+ERROR`, out)
	assert.Regexp(t, `fetch\s+success\s+100ms`, out)
	assert.Regexp(t, `parse\s+failed\s+5ms\s+bad input`, out)
	assert.Regexp(t, `store\s+skipped`, out)
	assert.Regexp(t, `loop\s+stalled\s+-`, out)
	assert.Contains(t, out, "3 dispatched: 1 succeeded, 1 failed, 0 cancelled, 1 skipped, 1 stalled")
	assert.NotContains(t, out, "\x1b[", "no colour codes when not writing to a terminal")
}
