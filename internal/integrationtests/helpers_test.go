package integrationtests

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/app"
	"github.com/vk/taskflow/internal/config"
	"github.com/vk/taskflow/internal/registry"
	"github.com/vk/taskflow/internal/scheduler"
	"github.com/vk/taskflow/internal/testutil"
	"github.com/vk/taskflow/modules/fail"
)

type sleeperInput struct {
	Duration string `hcl:"duration,optional"`
}

type execution struct {
	start, end time.Time
}

// sleeperModule registers a "sleeper" runner that records when each task ran.
type sleeperModule struct {
	mu         sync.Mutex
	executions map[string]execution
	running    int
	peak       int
}

func newSleeperModule() *sleeperModule {
	return &sleeperModule{executions: make(map[string]execution)}
}

func (m *sleeperModule) Register(r *registry.Registry) {
	r.RegisterRunner("sleeper", &registry.RegisteredRunner{
		NewInput: func() any { return new(sleeperInput) },
		Fn: func(ctx context.Context, task string, input any) error {
			d := 50 * time.Millisecond
			if in := input.(*sleeperInput); in.Duration != "" {
				var err error
				if d, err = time.ParseDuration(in.Duration); err != nil {
					return err
				}
			}

			m.mu.Lock()
			m.running++
			m.peak = max(m.peak, m.running)
			m.mu.Unlock()

			start := time.Now()
			var err error
			select {
			case <-time.After(d):
			case <-ctx.Done():
				err = ctx.Err()
			}

			m.mu.Lock()
			m.running--
			m.executions[task] = execution{start: start, end: time.Now()}
			m.mu.Unlock()
			return err
		},
	})
}

func (m *sleeperModule) get(t *testing.T, task string) execution {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.executions[task]
	require.True(t, ok, "task %q never ran", task)
	return e
}

func (m *sleeperModule) ran(task string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.executions[task]
	return ok
}

func (m *sleeperModule) peakConcurrency() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

type result struct {
	report *scheduler.Report
	err    error
	out    string
	logs   string
}

// runFlow writes flowHCL to a temp dir and runs it with the sleeper and fail
// runners registered. configure may adjust the config before the run.
func runFlow(t *testing.T, flowHCL string, sleeper *sleeperModule, configure func(*config.Config)) result {
	t.Helper()

	cfg := config.Default()
	cfg.FlowPath = testutil.WriteFiles(t, map[string]string{"main.hcl": flowHCL})
	cfg.Workers = 4
	cfg.LogLevel = "debug"
	cfg.Summary = false
	if configure != nil {
		configure(cfg)
	}

	var out bytes.Buffer
	logs := &testutil.SafeBuffer{}
	t.Cleanup(func() { testutil.DumpLogs(t, logs) })

	a, err := app.New(&out, logs, cfg, sleeper, &fail.Module{})
	require.NoError(t, err)
	rep, err := a.Run(context.Background())
	return result{report: rep, err: err, out: out.String(), logs: logs.String()}
}
