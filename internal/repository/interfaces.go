// Package repository implements persistence for table records and their outbox.
// Every backend applies model.Table.Join under a per-record lock so concurrent
// joins can never exceed capacity.
package repository

import (
	"context"
	"time"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

// TableRepository persists table records.
type TableRepository interface {
	// Create inserts t and a table_created outbox event atomically.
	Create(ctx context.Context, t *model.Table) error
	// GetByID returns the record or a NotFound error when no record of kind has that id.
	GetByID(ctx context.Context, kind model.Kind, id string) (*model.Table, error)
	// List returns every record of kind ordered by date.
	List(ctx context.Context, kind model.Kind) ([]model.Table, error)
	// Join locks the record, applies model.Table.Join and persists the new
	// participant with a participant_joined outbox event. Nothing is written on error.
	Join(ctx context.Context, kind model.Kind, id, participant string, now time.Time) (*model.Table, error)
}

// OutboxRepository gives the publisher access to pending outbox events.
type OutboxRepository interface {
	Unpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, id int64) error
}

// Store bundles the repositories of one backend with its cleanup.
// Outbox is nil when the backend records no outbox events.
type Store struct {
	Tables TableRepository
	Outbox OutboxRepository
	close  func() error
}

// Close releases the backend's resources.
func (s *Store) Close() error {
	if s == nil || s.close == nil {
		return nil
	}
	return s.close()
}
