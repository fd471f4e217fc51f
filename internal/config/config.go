package config

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/vk/taskflow/internal/scheduler"
)

// Default values.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultFailurePolicy = "skip"
)

// Config holds the full configuration for one taskflow invocation.
type Config struct {
	// FlowPath is a flow file or a directory of them.
	FlowPath  string
	Workers   int
	LogLevel  string
	LogFormat string
	// FailurePolicy is one of skip, continue or fail-fast.
	FailurePolicy string
	// HealthcheckPort enables the /health endpoint when positive.
	HealthcheckPort int
	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration
	// Summary prints a per-task table after the run.
	Summary bool
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Workers:       runtime.GOMAXPROCS(0),
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		FailurePolicy: DefaultFailurePolicy,
		Summary:       true,
	}
}

// Validate reports every invalid setting at once. A missing FlowPath is not
// an error here because the demo command runs without one.
func (c *Config) Validate() error {
	var errs []error
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q (want text or json)", c.LogFormat))
	}
	if _, err := scheduler.ParseFailurePolicy(c.FailurePolicy); err != nil {
		errs = append(errs, err)
	}
	if c.HealthcheckPort < 0 || c.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("healthcheck port %d out of range", c.HealthcheckPort))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	return errors.Join(errs...)
}

// Policy returns the parsed failure policy, falling back to the default
// when the setting is invalid.
func (c *Config) Policy() scheduler.FailurePolicy {
	p, err := scheduler.ParseFailurePolicy(c.FailurePolicy)
	if err != nil {
		return scheduler.SkipDependents
	}
	return p
}
