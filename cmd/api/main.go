package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindmap-backend/internal/bootstrap"
	"mindmap-backend/internal/shared/config"
	"mindmap-backend/internal/shared/server"
	"mindmap-backend/internal/shared/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("config.load_failed", err)
	}
	if err := telemetry.Init(cfg.Env, cfg.LogLevel); err != nil {
		fatal("logger.init_failed", err)
	}
	defer telemetry.Sync()

	if err := cfg.Validate(); err != nil {
		fatal("config.invalid", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
		Enabled:     cfg.OTelEnabled,
		Environment: cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    cfg.OTelInsecure,
		SampleRatio: cfg.OTelSampler,
	})
	if err != nil {
		fatal("tracing.init_failed", err)
	}

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		fatal("bootstrap.failed", err)
	}

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("server.start", map[string]any{"addr": srv.Addr, "env": cfg.Env})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			fatal("server.failed", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		telemetry.Error("server.shutdown_failed", map[string]any{"error": err})
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		telemetry.Warn("tracing.shutdown_failed", map[string]any{"error": err})
	}
	telemetry.Info("server.stopped", nil)
}

func fatal(msg string, err error) {
	telemetry.Error(msg, map[string]any{"error": err})
	telemetry.Sync()
	os.Exit(1)
}
