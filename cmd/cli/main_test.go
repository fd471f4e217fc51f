package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskflow/internal/cli"
)

func TestRun_ParseError(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"run", "--this-is-not-a-valid-flag"}, &out, &errOut)

	assert.Equal(t, cli.ExitUsage, code)
	assert.Contains(t, errOut.String(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_InvalidFlow(t *testing.T) {
	// A syntax error is reported before any task runs.
	invalidHCL := `
		task "print" "A" {
			arguments {
		// Missing closing brace here
	`
	p := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(p, []byte(invalidHCL), 0o600))

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"run", p}, &out, &errOut)

	assert.Equal(t, cli.ExitFailure, code)
	assert.Contains(t, errOut.String(), "failed to parse")
}

func TestRun_Success(t *testing.T) {
	p := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(p, []byte(`task "print" "hello" {}`), 0o600))

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"run", "--log-level", "error", p}, &out, &errOut)

	assert.Equal(t, cli.ExitOK, code, errOut.String())
	assert.Contains(t, out.String(), "] hello\n")
}
