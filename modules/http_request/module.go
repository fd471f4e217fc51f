// Package http_request provides a runner that performs one HTTP request and
// fails when the response status is not the expected one.
package http_request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/registry"
)

// Module implements the registry.Module interface for this package. All
// tasks share one client so that TCP connections are reused.
type Module struct {
	Client *http.Client
}

// New creates a module with a client using the given per-request timeout.
func New(timeout time.Duration) *Module {
	return &Module{Client: &http.Client{Timeout: timeout}}
}

// Input defines the arguments for the 'arguments' HCL block.
type Input struct {
	URL     string            `hcl:"url"`
	Method  string            `hcl:"method,optional"`
	Body    string            `hcl:"body,optional"`
	Headers map[string]string `hcl:"headers,optional"`
	// ExpectStatus, when set, must match the response status exactly.
	// Otherwise any status below 400 succeeds.
	ExpectStatus int `hcl:"expect_status,optional"`
}

func validate(input any) error {
	in := input.(*Input)
	u, err := url.Parse(in.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", in.URL)
	}
	return nil
}

// Run is the handler for the http_request runner.
func (m *Module) Run(ctx context.Context, task string, input any) error {
	in := input.(*Input)
	method := strings.ToUpper(in.Method)
	if method == "" {
		method = http.MethodGet
	}
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request.", "method", method, "url", in.URL)

	var body io.Reader
	if in.Body != "" {
		body = strings.NewReader(in.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, in.URL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range in.Headers {
		req.Header.Set(k, v)
	}

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	n, _ := io.Copy(io.Discard, resp.Body)

	logger.Info("Received HTTP response.", "status", resp.Status, "bytes", n)

	switch {
	case in.ExpectStatus != 0 && resp.StatusCode != in.ExpectStatus:
		return fmt.Errorf("unexpected status %s, want %d", resp.Status, in.ExpectStatus)
	case in.ExpectStatus == 0 && resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("request failed with status %s", resp.Status)
	}
	return nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("http_request", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Validate: validate,
		Fn:       m.Run,
	})
}
