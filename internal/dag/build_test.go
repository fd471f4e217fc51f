package dag

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/flowfile"
	"github.com/vk/taskflow/internal/registry"
	"github.com/vk/taskflow/internal/scheduler"
	"github.com/vk/taskflow/internal/work"
)

type echoInput struct {
	Message string `hcl:"message"`
}

// echoModule records the message of every task it runs.
type echoModule struct {
	mu   sync.Mutex
	seen map[string]string
}

func (m *echoModule) Register(r *registry.Registry) {
	r.RegisterRunner("echo", &registry.RegisteredRunner{
		NewInput: func() any { return new(echoInput) },
		Validate: func(input any) error {
			if input.(*echoInput).Message == "" {
				return errors.New("message must not be empty")
			}
			return nil
		},
		Fn: func(ctx context.Context, task string, input any) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.seen[task] = input.(*echoInput).Message
			return nil
		},
	})
	r.RegisterRunner("wait", &registry.RegisteredRunner{
		Fn: func(ctx context.Context, task string, input any) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
}

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), ctxlog.Discard())
}

func parse(t *testing.T, src string) *flowfile.Flow {
	t.Helper()
	l := &flowfile.Loader{Environ: func() []string { return []string{"GREETING=hi"} }}
	flow, err := l.Parse([]byte(src), "test.hcl")
	require.NoError(t, err)
	return flow
}

func TestBuild_Diamond(t *testing.T) {
	flow := parse(t, `
task "echo" "A" {
  arguments { message = "a" }
}
task "echo" "B" {
  depends_on = ["A"]
  arguments { message = "${env.GREETING} b" }
}
task "echo" "C" {
  depends_on = ["A"]
  arguments { message = "c" }
}
task "echo" "D" {
  depends_on = ["B", "C"]
  arguments { message = "d" }
}
`)
	mod := &echoModule{seen: make(map[string]string)}
	reg := registry.New().Use(mod)

	g, err := Build(testContext(), flow, reg)
	require.NoError(t, err)
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, 4, g.EdgeCount())

	d, ok := g.Lookup("D")
	require.True(t, ok)
	assert.Len(t, g.Predecessors(d), 2)

	c, err := scheduler.Run(testContext(), g)
	require.NoError(t, err)
	rep, err := c.Wait(testContext())
	require.NoError(t, err)
	require.NoError(t, rep.Err())

	assert.Equal(t, map[string]string{"A": "a", "B": "hi b", "C": "c", "D": "d"}, mod.seen)
}

func TestBuild_TaskTimeout(t *testing.T) {
	flow := parse(t, `
task "wait" "slow" {
  timeout = "20ms"
}
`)
	g, err := Build(testContext(), flow, registry.New().Use(&echoModule{seen: map[string]string{}}))
	require.NoError(t, err)

	c, err := scheduler.Run(testContext(), g)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(testContext(), 5*time.Second)
	defer cancel()
	rep, err := c.Wait(ctx)
	require.NoError(t, err)

	nr, ok := rep.Node("slow")
	require.True(t, ok)
	assert.Equal(t, work.Cancelled, nr.Outcome)
	assert.ErrorIs(t, nr.Err, context.DeadlineExceeded)
}

func TestBuild_Errors(t *testing.T) {
	reg := registry.New().Use(&echoModule{seen: map[string]string{}})

	testCases := []struct {
		name string
		src  string
		want string
	}{
		{"unknown runner", `task "teleport" "A" {}`, "unknown runner 'teleport'"},
		{"missing required argument", `task "echo" "A" {}`, "failed to decode arguments"},
		{"unexpected argument", `
task "echo" "A" {
  arguments {
    message = "x"
    colour  = "red"
  }
}`, "failed to decode arguments"},
		{"validation failure", `
task "echo" "A" {
  arguments { message = "" }
}`, "message must not be empty"},
		{"self dependency", `task "wait" "A" { depends_on = ["A"] }`, "self-referential edge"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(testContext(), parse(t, tc.src), reg)
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestBuild_ReportsEveryBadTask(t *testing.T) {
	reg := registry.New().Use(&echoModule{seen: map[string]string{}})
	flow := parse(t, `
task "nope" "A" {}
task "nada" "B" {}
`)
	_, err := Build(testContext(), flow, reg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownRunner)
	assert.ErrorContains(t, err, `task "A"`)
	assert.ErrorContains(t, err, `task "B"`)
}
