package dag

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/flowfile"
	"github.com/vk/taskflow/internal/graph"
	"github.com/vk/taskflow/internal/registry"
	"github.com/vk/taskflow/internal/work"
)

// ErrUnknownRunner is returned when a task names a runner nobody registered.
var ErrUnknownRunner = errors.New("unknown runner")

// Build constructs a graph with one node per task and one edge per
// depends_on entry. All task errors are reported together.
func Build(ctx context.Context, flow *flowfile.Flow, reg *registry.Registry) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.", "tasks", len(flow.Tasks))

	g := graph.New()
	var errs []error

	// First pass: one node per task.
	for _, task := range flow.Tasks {
		unit, err := newUnit(task, reg)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: task %q: %w", task.DeclRange, task.Name, err))
			continue
		}
		g.AddNode(task.Name, unit)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	logger.Debug("Build: Node creation complete.", "node_count", g.Len())

	// Second pass: link dependencies.
	for _, task := range flow.Tasks {
		to, _ := g.Lookup(task.Name)
		for _, dep := range task.DependsOn {
			from, ok := g.Lookup(dep)
			if !ok {
				errs = append(errs, fmt.Errorf("task %q depends on non-existent task %q: %w", task.Name, dep, graph.ErrUnknownNode))
				continue
			}
			if err := g.Precede(from, to); err != nil {
				errs = append(errs, fmt.Errorf("task %q depends on %q: %w", task.Name, dep, err))
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	logger.Debug("Build: Node linking complete.", "edge_count", g.EdgeCount())

	return g, nil
}

// newUnit decodes the task's arguments and binds them to its runner.
func newUnit(task *flowfile.Task, reg *registry.Registry) (work.Unit, error) {
	runner, ok := reg.Runner(task.Runner)
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownRunner, task.Runner)
	}

	var input any
	if runner.NewInput != nil {
		input = runner.NewInput()
		if diags := gohcl.DecodeBody(task.Arguments, task.EvalCtx, input); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode arguments: %w", diags)
		}
	}
	if runner.Validate != nil {
		if err := runner.Validate(input); err != nil {
			return nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	name := task.Name
	unit := func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx).With("task", name, "runner", task.Runner)
		return runner.Fn(ctxlog.WithLogger(ctx, logger), name, input)
	}
	if task.Timeout > 0 {
		return work.WithTimeout(unit, task.Timeout), nil
	}
	return unit, nil
}
