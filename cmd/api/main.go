// Package main is the entry point for the MindFuel API server.
//
// It loads configuration, connects to PostgreSQL, assembles the evaluation
// service and serves the HTTP API until SIGINT or SIGTERM, then shuts down
// gracefully.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindfuel/internal/api/handlers"
	"mindfuel/internal/bootstrap"
	"mindfuel/internal/config"
	"mindfuel/internal/core"
	"mindfuel/internal/evaluation"
	"mindfuel/internal/types"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(nil)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := bootstrap.NewLogger(cfg.LogLevel)
	logger.Info("mindfuel API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	deps, err := bootstrap.Build(startCtx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing dependencies: %w", err)
	}

	srv, err := newServer(cfg, logger, deps.Service, deps.Recorder,
		core.ProbeFunc("database", deps.Pool.Ping))
	if err != nil {
		deps.Close()
		return fmt.Errorf("creating server: %w", err)
	}
	srv.Closers = append(srv.Closers, deps)

	return runHTTPServer(srv, cfg, logger)
}

// newServer mounts every v1 handler on a core server.
func newServer(
	cfg *config.Config,
	logger *slog.Logger,
	svc *evaluation.Service,
	metrics core.MetricsCollector,
	probes ...core.HealthProbe,
) (*core.Server, error) {
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return nil, err
	}
	srv.Metrics = metrics
	srv.HealthProbes = probes

	appHandler := handlers.NewAppHandler(svc, srv.Validator, logger)
	usageHandler := handlers.NewUsageHandler(svc, srv.Validator, types.RealClock{}, logger)
	historyHandler := handlers.NewHistoryHandler(svc, srv.Validator, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		appHandler.RegisterRoutes,
		usageHandler.RegisterRoutes,
		historyHandler.RegisterRoutes,
	)

	srv.MountRoutes()
	return srv, nil
}

// runHTTPServer serves until a shutdown signal or a listener error.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			srv.Shutdown(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

var _ io.Closer = (*bootstrap.Deps)(nil)
