package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/vk/taskflow/internal/app"
	"github.com/vk/taskflow/internal/config"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(err error) *ExitError {
	return &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
}

func failure(err error) *ExitError {
	return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
}

// flags holds the values bound to the root command's persistent flags.
type flags struct {
	configFile      string
	workers         int
	logLevel        string
	logFormat       string
	failurePolicy   string
	healthcheckPort int
	timeout         string
	summary         bool
}

// Execute runs the taskflow command line with args. Every returned error is
// an *ExitError.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything cobra rejects before a command runs is a usage problem.
	return usageError(err)
}

// NewRootCommand builds the command tree.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "taskflow",
		Short: "Run dependency graphs of tasks concurrently",
		Long: `taskflow executes a graph of tasks on a bounded worker pool. A task starts
as soon as every task it depends on has completed, and the run finishes once
every task has completed.

Flows are written in HCL:

  task "sleep" "A" {
    arguments {
      duration = "100ms"
    }
  }

  task "print" "B" {
    depends_on = ["A"]
  }`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", "", "Config file (.toml or .yaml). Defaults to ./taskflow.toml or ./taskflow.yaml if present.")
	pf.IntVarP(&f.workers, "workers", "w", 0, "Number of concurrent workers. 0 uses the number of CPUs.")
	pf.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "Logging level: 'debug', 'info', 'warn' or 'error'.")
	pf.StringVar(&f.logFormat, "log-format", config.DefaultLogFormat, "Log output format: 'text' or 'json'.")
	pf.StringVar(&f.failurePolicy, "failure-policy", config.DefaultFailurePolicy, "What happens downstream of a failed task: 'skip', 'continue' or 'fail-fast'.")
	pf.IntVar(&f.healthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	pf.StringVar(&f.timeout, "timeout", "", "Whole-run timeout, e.g. '30s'. Empty means no limit.")
	pf.BoolVar(&f.summary, "summary", true, "Print a per-task summary after the run.")

	root.AddCommand(newRunCommand(f, stdout, stderr), newDemoCommand(f, stdout, stderr))
	return root
}

func newRunCommand(f *flags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "run [FLOW_PATH]",
		Short: "Run the tasks in a flow file or a directory of flow files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			if len(args) > 0 {
				cfg.FlowPath = args[0]
			}
			if cfg.FlowPath == "" {
				return usageError(errors.New("no flow path given: pass FLOW_PATH or set flow_path in the config file"))
			}

			a, err := app.New(stdout, stderr, cfg)
			if err != nil {
				return usageError(err)
			}
			if _, err := a.Run(cmd.Context()); err != nil {
				return failure(err)
			}
			return nil
		},
	}
}

func newDemoCommand(f *flags, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in diamond graph A -> {B, C} -> D",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, f)
			if err != nil {
				return err
			}
			a, err := app.New(stdout, stderr, cfg)
			if err != nil {
				return usageError(err)
			}
			if _, err := a.RunDemo(cmd.Context()); err != nil {
				return failure(err)
			}
			return nil
		},
	}
}

// resolveConfig loads the config file and environment, then applies every
// flag the user set explicitly.
func resolveConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	cfg, _, err := config.Load(f.configFile, wd, os.Getenv)
	if err != nil {
		return nil, usageError(err)
	}

	changed := cmd.Flags().Changed
	if changed("workers") {
		cfg.Workers = f.workers
		if cfg.Workers == 0 {
			cfg.Workers = runtime.GOMAXPROCS(0)
		}
	}
	if changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = f.logFormat
	}
	if changed("failure-policy") {
		cfg.FailurePolicy = f.failurePolicy
	}
	if changed("healthcheck-port") {
		cfg.HealthcheckPort = f.healthcheckPort
	}
	if changed("summary") {
		cfg.Summary = f.summary
	}
	if changed("timeout") && f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil {
			return nil, usageError(fmt.Errorf("invalid --timeout: %w", err))
		}
		cfg.Timeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, usageError(err)
	}
	return cfg, nil
}
