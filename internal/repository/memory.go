package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

// MemoryStore keeps records in process memory. A single mutex serialises
// all mutations, which trivially gives one in-flight mutation per record.
type MemoryStore struct {
	mu         sync.Mutex
	tables     map[string]*model.Table
	outbox     []model.OutboxEvent
	skipOutbox bool
	now        func() time.Time
}

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithoutOutbox stops the store from recording outbox events.
func WithoutOutbox() MemoryOption {
	return func(m *MemoryStore) { m.skipOutbox = true }
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		tables: make(map[string]*model.Table),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create stores a copy of t.
func (m *MemoryStore) Create(ctx context.Context, t *model.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	event, err := model.NewTableCreatedEvent(t, t.CreatedAt)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.tables[t.ID]; exists {
		return fmt.Errorf("insert table: duplicate id %q", t.ID)
	}
	m.tables[t.ID] = t.Clone()
	m.appendOutbox(event)
	return nil
}

// GetByID returns a copy of the stored record.
func (m *MemoryStore) GetByID(ctx context.Context, kind model.Kind, id string) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[id]
	if !ok || t.Kind != kind {
		return nil, model.NotFound(kind)
	}
	return t.Clone(), nil
}

// List returns copies of all records of kind ordered by date.
func (m *MemoryStore) List(ctx context.Context, kind model.Kind) ([]model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var tables []model.Table
	for _, t := range m.tables {
		if t.Kind == kind {
			tables = append(tables, *t.Clone())
		}
	}
	slices.SortFunc(tables, func(a, b model.Table) int {
		return cmp.Or(
			cmp.Compare(a.Date, b.Date),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
	return tables, nil
}

// Join mutates a copy and swaps it in only when every step succeeded.
func (m *MemoryStore) Join(ctx context.Context, kind model.Kind, id, participant string, now time.Time) (*model.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tables[id]
	if !ok || stored.Kind != kind {
		return nil, model.NotFound(kind)
	}

	t := stored.Clone()
	if err := t.Join(participant, now); err != nil {
		return nil, err
	}
	event, err := model.NewParticipantJoinedEvent(t, participant, now)
	if err != nil {
		return nil, err
	}

	m.tables[id] = t
	m.appendOutbox(event)
	return t.Clone(), nil
}

// Unpublished returns up to limit pending outbox events, oldest first.
func (m *MemoryStore) Unpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var events []model.OutboxEvent
	for _, ev := range m.outbox {
		if len(events) >= limit {
			break
		}
		if ev.PublishedAt == nil {
			events = append(events, ev)
		}
	}
	return events, nil
}

// MarkPublished stamps an outbox event as delivered.
func (m *MemoryStore) MarkPublished(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.outbox {
		if m.outbox[i].ID == id {
			at := m.now().UTC()
			m.outbox[i].PublishedAt = &at
			return nil
		}
	}
	return fmt.Errorf("outbox event %d: %w", id, model.ErrNotFound)
}

// appendOutbox assigns the next sequential id. Callers hold m.mu.
func (m *MemoryStore) appendOutbox(ev model.OutboxEvent) {
	if m.skipOutbox {
		return
	}
	ev.ID = int64(len(m.outbox)) + 1
	m.outbox = append(m.outbox, ev)
}
