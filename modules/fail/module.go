// Package fail provides a runner that always fails, for exercising failure
// policies from a flow file.
package fail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/taskflow/internal/registry"
)

// ErrInjected is wrapped by every error the fail runner returns.
var ErrInjected = errors.New("injected failure")

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the fail runner.
type Input struct {
	Message string `hcl:"message,optional"`
	// After delays the failure.
	After string `hcl:"after,optional"`
	// Panic makes the runner panic instead of returning an error.
	Panic bool `hcl:"panic,optional"`
}

func validate(input any) error {
	in := input.(*Input)
	if in.After == "" {
		return nil
	}
	_, err := time.ParseDuration(in.After)
	return err
}

// OnRunFail waits for After, then fails.
func OnRunFail(ctx context.Context, task string, input any) error {
	in := input.(*Input)
	if in.After != "" {
		d, err := time.ParseDuration(in.After)
		if err != nil {
			return err
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	msg := in.Message
	if msg == "" {
		msg = fmt.Sprintf("task %s failed", task)
	}
	if in.Panic {
		panic(msg)
	}
	return fmt.Errorf("%w: %s", ErrInjected, msg)
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("fail", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Validate: validate,
		Fn:       OnRunFail,
	})
}
