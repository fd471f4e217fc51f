// Package sleep provides a runner that stands in for compute-bound work by
// sleeping for a fixed duration.
package sleep

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the sleep runner.
type Input struct {
	Duration string `hcl:"duration,optional"`
}

// DefaultDuration is used when a task sets no duration.
const DefaultDuration = 100 * time.Millisecond

func (in *Input) duration() (time.Duration, error) {
	if in.Duration == "" {
		return DefaultDuration, nil
	}
	d, err := time.ParseDuration(in.Duration)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q must not be negative", in.Duration)
	}
	return d, nil
}

func validate(input any) error {
	_, err := input.(*Input).duration()
	return err
}

// OnRunSleep blocks for the configured duration or until ctx is done.
func OnRunSleep(ctx context.Context, task string, input any) error {
	d, err := input.(*Input).duration()
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Sleeping.", "duration", d)

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("sleep", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Validate: validate,
		Fn:       OnRunSleep,
	})
}
