package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for config files that are neither TOML nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config file format")

// ProjectFiles are the names searched for in the working directory when no
// config file is given explicitly.
var ProjectFiles = []string{"taskflow.toml", "taskflow.yaml", "taskflow.yml"}

// fileConfig mirrors Config with pointer fields so that only keys present in
// the file override earlier layers.
type fileConfig struct {
	FlowPath        *string `toml:"flow_path" yaml:"flow_path"`
	Workers         *int    `toml:"workers" yaml:"workers"`
	LogLevel        *string `toml:"log_level" yaml:"log_level"`
	LogFormat       *string `toml:"log_format" yaml:"log_format"`
	FailurePolicy   *string `toml:"failure_policy" yaml:"failure_policy"`
	HealthcheckPort *int    `toml:"healthcheck_port" yaml:"healthcheck_port"`
	Timeout         *string `toml:"timeout" yaml:"timeout"`
	Summary         *bool   `toml:"summary" yaml:"summary"`
}

// Load builds a Config from, in priority order:
// 1. Defaults
// 2. The config file at path, or the first ProjectFiles entry found in dir
// 3. Environment variables, read through getenv
//
// It returns the config and the file that was read, if any.
func Load(path, dir string, getenv func(string) string) (*Config, string, error) {
	cfg := Default()

	if path == "" {
		path = findProjectFile(dir)
	}
	if path != "" {
		if err := loadFile(cfg, path); err != nil {
			return nil, "", fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := loadFromEnv(cfg, getenv); err != nil {
		return nil, "", fmt.Errorf("loading config from environment: %w", err)
	}
	return cfg, path, nil
}

func findProjectFile(dir string) string {
	if dir == "" {
		return ""
	}
	for _, name := range ProjectFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&fc)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown keys: %v", undecoded)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	return fc.apply(cfg)
}

func (fc *fileConfig) apply(cfg *Config) error {
	if fc.FlowPath != nil {
		cfg.FlowPath = *fc.FlowPath
	}
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.FailurePolicy != nil {
		cfg.FailurePolicy = *fc.FailurePolicy
	}
	if fc.HealthcheckPort != nil {
		cfg.HealthcheckPort = *fc.HealthcheckPort
	}
	if fc.Summary != nil {
		cfg.Summary = *fc.Summary
	}
	if fc.Timeout != nil {
		d, err := time.ParseDuration(*fc.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout: %w", err)
		}
		cfg.Timeout = d
	}
	return nil
}
