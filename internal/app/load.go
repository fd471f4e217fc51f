package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/dag"
	"github.com/vk/taskflow/internal/flowfile"
	"github.com/vk/taskflow/internal/graph"
)

// ErrNoFlowPath is returned by Run when the configuration names no flow.
var ErrNoFlowPath = errors.New("no flow path given")

// loadGraph reads the configured flow files and builds their graph.
func (a *App) loadGraph(ctx context.Context) (*graph.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	if a.config.FlowPath == "" {
		return nil, ErrNoFlowPath
	}
	logger.Debug("Loading flow...", "flow_path", a.config.FlowPath)

	flow, err := flowfile.NewLoader().Load(ctx, a.config.FlowPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	logger.Info("Flow loaded successfully.", "tasks", len(flow.Tasks), "files", len(flow.Files))

	g, err := dag.Build(ctx, flow, a.registry)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependency graph: %w", err)
	}
	return g, nil
}
