// Package print provides the print runner, which writes a line stamped with
// the milliseconds elapsed since the module was created.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	mu    sync.Mutex
	out   io.Writer
	start time.Time
	now   func() time.Time
}

// New creates a print module writing to w, or stdout when w is nil. Elapsed
// times are measured from this call.
func New(w io.Writer) *Module {
	if w == nil {
		w = os.Stdout
	}
	return &Module{out: w, start: time.Now(), now: time.Now}
}

// Input defines the arguments for the print runner.
type Input struct {
	// Message defaults to the task name.
	Message string            `hcl:"message,optional"`
	Values  map[string]string `hcl:"values,optional"`
}

// Println writes one stamped line. Concurrent calls never interleave.
func (m *Module) Println(msg string) error {
	return m.write(msg, nil)
}

func (m *Module) write(msg string, values map[string]string) error {
	var b strings.Builder
	elapsed := m.now().Sub(m.start).Milliseconds()
	fmt.Fprintf(&b, "[time=%5dms] %s\n", elapsed, msg)

	// Sort keys for consistent output
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "      %s = %q\n", k, values[k])
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := io.WriteString(m.out, b.String())
	return err
}

// Run is the handler for the print runner.
func (m *Module) Run(ctx context.Context, task string, input any) error {
	in := input.(*Input)
	msg := in.Message
	if msg == "" {
		msg = task
	}
	ctxlog.FromContext(ctx).Debug("Printing message.", "message", msg)
	return m.write(msg, in.Values)
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("print", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Fn:       m.Run,
	})
}
