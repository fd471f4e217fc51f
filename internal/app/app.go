package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/taskflow/internal/config"
	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/registry"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *config.Config
	registry *registry.Registry
}

// New returns a fully initialized App with its own logger and registry.
// Program output goes to outW and logs to logW. When no modules are given
// the built-in runners are registered.
func New(outW, logW io.Writer, cfg *config.Config, modules ...registry.Module) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg := registry.New().Use(modules...)
	logger.Debug("All Go modules registered.", "count", len(modules), "runners", reg.RunnerTypes())

	if err := reg.Validate(ctx); err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
