// cmd/api is the HTTP API entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Shivanand-hulikatti/sola-table/internal/auth"
	"github.com/Shivanand-hulikatti/sola-table/internal/config"
	"github.com/Shivanand-hulikatti/sola-table/internal/handler"
	"github.com/Shivanand-hulikatti/sola-table/internal/logger"
	"github.com/Shivanand-hulikatti/sola-table/internal/repository"
	"github.com/Shivanand-hulikatti/sola-table/internal/service"
	"github.com/Shivanand-hulikatti/sola-table/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("api exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Configuration and observability ───────────────────────────────
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.Setup(cfg.LogLevel)
	slog.SetDefault(log)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{
		ServiceName:    "sola-table-api",
		ServiceVersion: cfg.ServiceVersion,
		StorageDriver:  cfg.StorageDriver,
		Endpoint:       cfg.OTelEndpoint,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Error("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	// ── 2. Storage ───────────────────────────────────────────────────────
	store, err := repository.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("storage ready", slog.String("driver", cfg.StorageDriver))

	// ── 3. Wire up layers ────────────────────────────────────────────────
	if cfg.AuthSecret == "" {
		log.Warn("AUTH_SECRET is not set; every authenticated request will be rejected")
	}
	verifier := auth.NewVerifier([]byte(cfg.AuthSecret), cfg.AuthIssuer)
	svc := service.NewTableService(store.Tables, service.WithLogger(log))
	router := handler.NewRouter(svc, verifier, log)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("server stopped")
	return nil
}
