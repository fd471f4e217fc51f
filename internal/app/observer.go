package app

import (
	"log/slog"

	"github.com/vk/taskflow/internal/work"
)

// runObserver feeds scheduler events to the health server and the log.
type runObserver struct {
	logger *slog.Logger
	health *healthServer
}

func (o *runObserver) OnDispatch(name string) {
	if o.health != nil {
		o.health.running.Add(1)
	}
	o.logger.Debug("Task dispatched.", "task", name)
}

func (o *runObserver) OnComplete(name string, res work.Result) {
	if o.health != nil {
		o.health.running.Add(-1)
	}
	if res.Outcome == work.Success {
		o.logger.Info("Task finished.", "task", name, "duration", res.Duration())
	}
}
