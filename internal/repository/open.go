package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/sola-table/internal/config"
	"github.com/Shivanand-hulikatti/sola-table/internal/database"
)

// Open connects the backend selected by cfg.StorageDriver.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Store, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := database.NewPool(ctx, cfg.PostgresDSN(), log)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		pg := NewPostgresStore(pool)
		return &Store{Tables: pg, Outbox: pg, close: func() error { pool.Close(); return nil }}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("database: %w", err)
		}
		lite := NewSQLiteStore(db)
		return &Store{Tables: lite, Outbox: lite, close: db.Close}, nil

	case config.DriverMemory:
		// No publisher can reach process memory, so nothing would drain the outbox.
		return &Store{Tables: NewMemoryStore(WithoutOutbox())}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// NewMemory returns a Store backed by a fresh MemoryStore that records outbox events.
func NewMemory() *Store {
	mem := NewMemoryStore()
	return &Store{Tables: mem, Outbox: mem}
}
