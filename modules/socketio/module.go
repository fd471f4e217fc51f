// Package socketio provides a runner that connects to a Socket.IO server,
// optionally emits an event, and waits for a reply event.
package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/vk/taskflow/internal/ctxlog"
	"github.com/vk/taskflow/internal/registry"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultTimeout bounds a task that sets no timeout of its own.
const DefaultTimeout = 10 * time.Second

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the socketio runner.
type Input struct {
	URL                string            `hcl:"url"`
	Namespace          string            `hcl:"namespace,optional"`
	OnEvent            string            `hcl:"on_event"`
	EmitEvent          string            `hcl:"emit_event,optional"`
	EmitData           map[string]string `hcl:"emit_data,optional"`
	Timeout            string            `hcl:"timeout,optional"`
	InsecureSkipVerify bool              `hcl:"insecure_skip_verify,optional"`
}

func (in *Input) timeout() (time.Duration, error) {
	if in.Timeout == "" {
		return DefaultTimeout, nil
	}
	return time.ParseDuration(in.Timeout)
}

func validate(input any) error {
	in := input.(*Input)
	u, err := url.Parse(in.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", in.URL)
	}
	if in.OnEvent == "" {
		return errors.New("on_event must not be empty")
	}
	if _, err := in.timeout(); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}

// OnRunSocketIO is the handler for the socketio runner. It succeeds when
// OnEvent arrives before the timeout.
func OnRunSocketIO(ctx context.Context, task string, input any) error {
	in := input.(*Input)
	logger := ctxlog.FromContext(ctx).With("url", in.URL, "on_event", in.OnEvent, "emit_event", in.EmitEvent)
	logger.Debug("Handler started.")
	defer logger.Debug("Handler finished.")

	timeout, err := in.timeout()
	if err != nil {
		return err
	}
	parsedURL, err := url.Parse(in.URL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" && parsedURL.Path != "/" {
		opts.SetPath(parsedURL.Path)
	}
	if in.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification.")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(in.Namespace, opts)
	defer func() {
		logger.Debug("Disconnecting socket client.")
		io.Disconnect()
	}()

	var isConnected atomic.Bool
	done := make(chan error, 1)
	finish := func(err error) {
		select {
		case done <- err:
		default:
		}
	}

	io.On(types.EventName("connect"), func(...any) {
		isConnected.Store(true)
		logger.Info("Successfully connected.", "namespace", in.Namespace, "sid", io.Id())
		if in.EmitEvent != "" {
			logger.Info("Emitting event.", "event", in.EmitEvent)
			io.Emit(in.EmitEvent, in.EmitData)
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		if len(errs) > 0 {
			if err, ok := errs[0].(error); ok {
				finish(fmt.Errorf("failed to connect: %w", err))
				return
			}
		}
		finish(errors.New("failed to connect"))
	})
	io.On(types.EventName(in.OnEvent), func(data ...any) {
		logger.Info("Received event.", "event", in.OnEvent, "args", len(data))
		finish(nil)
	})

	io.Connect()

	select {
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if isConnected.Load() {
			return fmt.Errorf("timed out after connecting while waiting for event '%s'", in.OnEvent)
		}
		return errors.New("timed out while waiting for initial connection")
	case err := <-done:
		return err
	}
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("socketio", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		Validate: validate,
		Fn:       OnRunSocketIO,
	})
}
