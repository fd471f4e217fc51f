package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable the loader reads.
const EnvPrefix = "TASKFLOW_"

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config, getenv func(string) string) error {
	var errs []error
	env := func(name string) string { return strings.TrimSpace(getenv(EnvPrefix + name)) }

	if v := env("FLOW"); v != "" {
		cfg.FlowPath = v
	}
	if v := env("WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sWORKERS: %w", EnvPrefix, err))
		} else {
			cfg.Workers = n
		}
	}
	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := env("LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := env("FAILURE_POLICY"); v != "" {
		cfg.FailurePolicy = v
	}
	if v := env("HEALTHCHECK_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sHEALTHCHECK_PORT: %w", EnvPrefix, err))
		} else {
			cfg.HealthcheckPort = n
		}
	}
	if v := env("TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err))
		} else {
			cfg.Timeout = d
		}
	}
	if v := env("SUMMARY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSUMMARY: %w", EnvPrefix, err))
		} else {
			cfg.Summary = b
		}
	}
	return errors.Join(errs...)
}
