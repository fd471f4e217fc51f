package integrationtests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/config"
	"github.com/vk/taskflow/internal/scheduler"
	"github.com/vk/taskflow/internal/work"
	"github.com/vk/taskflow/modules/fail"
)

const failingFlow = `
task "fail" "broken" {
  arguments { after = "20ms" }
}
task "sleeper" "downstream" { depends_on = ["broken"] }
task "sleeper" "leaf" { depends_on = ["downstream"] }
task "sleeper" "slow_branch" {
  arguments { duration = "300ms" }
}
task "sleeper" "after_slow" { depends_on = ["slow_branch"] }
`

func TestErrorHandling_FailureSkipsDependents(t *testing.T) {
	sleeper := newSleeperModule()
	res := runFlow(t, failingFlow, sleeper, nil)

	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, fail.ErrInjected)
	assert.NotErrorIs(t, res.err, scheduler.ErrSkipped, "skips are not root causes")

	for _, name := range []string{"downstream", "leaf"} {
		nr, ok := res.report.Node(name)
		require.True(t, ok)
		assert.Equal(t, work.Skipped, nr.Outcome, name)
		assert.False(t, sleeper.ran(name), "%s must not run", name)
	}
	assert.True(t, sleeper.ran("after_slow"), "an independent branch keeps running")
	assert.Equal(t, 5, res.report.Dispatched)
}

func TestErrorHandling_FailFastCancelsOtherBranches(t *testing.T) {
	sleeper := newSleeperModule()
	res := runFlow(t, failingFlow, sleeper, func(c *config.Config) { c.FailurePolicy = "fail-fast" })

	require.Error(t, res.err)
	slow, _ := res.report.Node("slow_branch")
	assert.Equal(t, work.Cancelled, slow.Outcome)
	after, _ := res.report.Node("after_slow")
	assert.Equal(t, work.Skipped, after.Outcome)
	assert.Equal(t, 5, res.report.Dispatched, "every task still completes exactly once")
}

func TestErrorHandling_TaskTimeoutFailsRun(t *testing.T) {
	res := runFlow(t, `
task "sleeper" "slow" {
  timeout   = "20ms"
  arguments { duration = "5s" }
}
`, newSleeperModule(), nil)

	require.Error(t, res.err)
	nr, _ := res.report.Node("slow")
	assert.Equal(t, work.Cancelled, nr.Outcome)
}

func TestErrorHandling_RejectedBeforeRun(t *testing.T) {
	testCases := []struct {
		name string
		flow string
		want string
	}{
		{"invalid hcl", `task "sleeper" "A" {`, "failed to parse"},
		{"unknown dependency", `task "sleeper" "A" { depends_on = ["ghost"] }`, `non-existent task "ghost"`},
		{"ambiguous task name", "task \"sleeper\" \"A\" {}\ntask \"fail\" \"A\" {}", `duplicate task "A"`},
		{"unknown argument", "task \"sleeper\" \"A\" {\n  arguments { speed = \"fast\" }\n}", "failed to decode arguments"},
		{"invalid runner argument", "task \"fail\" \"A\" {\n  arguments { after = \"later\" }\n}", "invalid arguments"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sleeper := newSleeperModule()
			res := runFlow(t, tc.flow, sleeper, nil)
			require.Error(t, res.err)
			assert.ErrorContains(t, res.err, tc.want)
			assert.Nil(t, res.report)
			assert.False(t, sleeper.ran("A"))
		})
	}
}
