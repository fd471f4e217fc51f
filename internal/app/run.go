package app

import (
	"context"
	"fmt"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/graph"
	"github.com/vk/taskflow/internal/scheduler"
)

// Run loads the configured flow, executes it and returns the run's report.
// The error is non-nil when loading failed or any task did not succeed; in
// the latter case the report is returned as well.
func (a *App) Run(ctx context.Context) (*scheduler.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	g, err := a.loadGraph(ctx)
	if err != nil {
		return nil, err
	}
	return a.execute(ctx, g)
}

// RunDemo executes the built-in diamond graph.
func (a *App) RunDemo(ctx context.Context) (*scheduler.Report, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.RunDemo method started.")
	return a.execute(ctx, Demo(a.outW, DemoDelay))
}

func (a *App) execute(ctx context.Context, g *graph.Graph) (*scheduler.Report, error) {
	if a.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
	}

	observer := &runObserver{logger: a.logger}
	if a.config.HealthcheckPort > 0 {
		h, err := startHealthcheckServer(a.logger, fmt.Sprintf(":%d", a.config.HealthcheckPort))
		if err != nil {
			return nil, err
		}
		defer h.close()
		observer.health = h
	} else {
		a.logger.Debug("Health check server not started: disabled.")
	}

	if g.Len() == 0 {
		a.logger.Warn("No nodes found in graph, execution not required.")
	}

	a.logger.Info("🚀 Starting concurrent execution...", "workers", a.config.Workers, "policy", a.config.Policy().String())
	c, err := scheduler.Run(ctx, g,
		scheduler.WithWorkers(a.config.Workers),
		scheduler.WithFailurePolicy(a.config.Policy()),
		scheduler.WithObserver(observer),
	)
	if err != nil {
		return nil, fmt.Errorf("execution failed: %w", err)
	}

	// The run always drains: once ctx is done, unstarted tasks complete as
	// cancelled instead of running.
	rep, err := c.Wait(context.Background())
	if err != nil {
		return nil, err
	}
	a.logger.Info("🏁 Execution finished.", "run_id", rep.RunID, "elapsed", rep.Elapsed)

	if a.config.Summary {
		if err := renderSummary(a.outW, rep); err != nil {
			a.logger.Warn("Failed to write run summary.", "error", err)
		}
	}
	if err := rep.Err(); err != nil {
		return rep, fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return rep, nil
}
