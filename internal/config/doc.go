// Package config holds the application settings and loads them in layers:
// defaults, then a taskflow.toml or taskflow.yaml file, then TASKFLOW_*
// environment variables. Command-line flags are applied last by the cli
// package.
package config
