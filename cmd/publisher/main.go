// Package main provides the outbox publisher that polls unpublished events and publishes them to Redis Streams.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shivanand-hulikatti/sola-table/internal/config"
	"github.com/Shivanand-hulikatti/sola-table/internal/logger"
	"github.com/Shivanand-hulikatti/sola-table/internal/repository"
	"github.com/Shivanand-hulikatti/sola-table/internal/service"
	"github.com/Shivanand-hulikatti/sola-table/internal/stream"
)

func main() {
	if err := run(); err != nil {
		slog.Error("publisher exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.Setup(cfg.LogLevel)
	slog.SetDefault(log)

	if cfg.StorageDriver == config.DriverMemory {
		return fmt.Errorf("publisher needs a shared storage backend, got %q", cfg.StorageDriver)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	redisClient, err := stream.NewClient(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	publisher := stream.NewRedisPublisher(redisClient, cfg.OutboxStream)
	outbox := service.NewOutboxService(store.Outbox, publisher, log)

	log.Info("starting outbox publisher",
		slog.String("stream", cfg.OutboxStream),
		slog.Duration("poll_interval", cfg.PublisherPollInterval),
		slog.Int("batch_size", cfg.PublisherBatchSize),
	)
	outbox.Run(ctx, cfg.PublisherPollInterval, cfg.PublisherBatchSize)
	return nil
}
