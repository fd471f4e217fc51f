package registry

import (
	"context"
	"fmt"
	"log/slog"
)

// RunnerFunc executes one task. input is the value returned by NewInput after
// the task's arguments block has been decoded into it.
type RunnerFunc func(ctx context.Context, task string, input any) error

// RegisteredRunner holds the compiled Go parts of a runner.
type RegisteredRunner struct {
	// NewInput returns a pointer to a struct with hcl tags. A nil NewInput
	// means the runner takes no arguments.
	NewInput func() any
	// Validate checks a decoded input. Optional.
	Validate func(input any) error
	Fn       RunnerFunc
}

// RegisterRunner registers the Go handler for a runner type. Registering the
// same type twice is a programming error and panics.
func (r *Registry) RegisterRunner(runnerType string, handler *RegisteredRunner) {
	if handler == nil || handler.Fn == nil {
		panic(fmt.Sprintf("runner '%s' registered without a handler function", runnerType))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.runners[runnerType]; exists {
		panic(fmt.Sprintf("runner handler with name '%s' already registered", runnerType))
	}
	slog.Debug("Registering runner handler.", "runner", runnerType)
	r.runners[runnerType] = handler
}
