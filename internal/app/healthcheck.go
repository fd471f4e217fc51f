package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"
)

// healthServer serves /health while a run is in progress.
type healthServer struct {
	logger  *slog.Logger
	server  *http.Server
	addr    net.Addr
	running atomic.Int64
}

// healthHandler reports OK and the number of tasks currently running.
func (h *healthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK running=%d\n", h.running.Load())
}

// startHealthcheckServer binds addr and serves in the background. Binding
// errors are returned; serving errors are logged.
func startHealthcheckServer(logger *slog.Logger, addr string) (*healthServer, error) {
	logger.Debug("Configuring health check server.")
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start health check server: %w", err)
	}

	h := &healthServer{logger: logger, addr: l.Addr()}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.healthHandler)
	h.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("🩺 Health check server starting.", "address", fmt.Sprintf("http://%s/health", h.addr))
		// Serve returns ErrServerClosed on graceful shutdown.
		if err := h.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly.", "error", err)
		}
	}()
	return h, nil
}

func (h *healthServer) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h.logger.Info("🩺 Shutting down health check server...")
	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error("Health check server shutdown failed.", "error", err)
		return err
	}
	h.logger.Debug("Health check server shut down gracefully.")
	return nil
}
