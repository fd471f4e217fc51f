package testutil

import (
	"context"
	"sync"

	"github.com/vk/taskflow/internal/registry"
)

// NoopInput accepts an optional tag so flows can pass arguments to noop tasks.
type NoopInput struct {
	Tag string `hcl:"tag,optional"`
}

// NoopModule registers a "noop" runner that does nothing but remember which
// tasks ran, in order.
type NoopModule struct {
	mu  sync.Mutex
	ran []string
}

// Register implements registry.Module.
func (m *NoopModule) Register(r *registry.Registry) {
	r.RegisterRunner("noop", &registry.RegisteredRunner{
		NewInput: func() any { return new(NoopInput) },
		Fn: func(ctx context.Context, task string, input any) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.ran = append(m.ran, task)
			return nil
		},
	})
}

// Ran returns the tasks executed so far, in completion order.
func (m *NoopModule) Ran() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.ran))
	copy(out, m.ran)
	return out
}
