package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

// SQLiteStore implements TableRepository and OutboxRepository on SQLite.
// The handle is expected to come from database.OpenSQLite, whose single
// connection serialises every transaction.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore constructs a SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Create inserts the record and its table_created event in one transaction.
func (r *SQLiteStore) Create(ctx context.Context, t *model.Table) error {
	event, err := model.NewTableCreatedEvent(t, t.CreatedAt)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tables (`+tableColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Kind), t.Organizer, t.Title, t.Description, t.MaxParticipants,
		t.Country, t.City, t.Location, int64(t.Price), t.Date, t.Category, t.ImageURL, toMillis(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert table: %w", err)
	}
	if err := insertOutboxSQLite(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID returns a single record with its participants.
func (r *SQLiteStore) GetByID(ctx context.Context, kind model.Kind, id string) (*model.Table, error) {
	t, err := scanTableSQLite(r.db.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = ? AND kind = ?`,
		id, string(kind),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NotFound(kind)
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	t.Participants, err = participantsSQLite(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all records of kind ordered by date, then creation time.
func (r *SQLiteStore) List(ctx context.Context, kind model.Kind) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE kind = ? ORDER BY date, created_at, id`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	var tables []model.Table
	index := make(map[string]int)
	for rows.Next() {
		t, err := scanTableSQLite(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan table: %w", err)
		}
		index[t.ID] = len(tables)
		tables = append(tables, *t)
	}
	// Close before the next query: the pool holds a single connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	prows, err := r.db.QueryContext(ctx,
		`SELECT p.table_id, p.participant
		 FROM participants p JOIN tables t ON t.id = p.table_id
		 WHERE t.kind = ?
		 ORDER BY p.table_id, p.position`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var tableID, participant string
		if err := prows.Scan(&tableID, &participant); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		if i, ok := index[tableID]; ok {
			tables[i].Participants = append(tables[i].Participants, participant)
		}
	}
	return tables, prows.Err()
}

// Join applies model.Table.Join inside one transaction. The single pooled
// connection means no other transaction can interleave between the read
// and the write.
func (r *SQLiteStore) Join(ctx context.Context, kind model.Kind, id, participant string, now time.Time) (*model.Table, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	t, err := scanTableSQLite(tx.QueryRowContext(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = ? AND kind = ?`,
		id, string(kind),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.NotFound(kind)
		}
		return nil, fmt.Errorf("load table: %w", err)
	}
	t.Participants, err = participantsSQLite(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := t.Join(participant, now); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO participants (table_id, participant, position, joined_at) VALUES (?, ?, ?, ?)`,
		id, participant, len(t.Participants), toMillis(now),
	); err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE tables SET participant_count = ? WHERE id = ?`,
		len(t.Participants), id,
	); err != nil {
		return nil, fmt.Errorf("update participant_count: %w", err)
	}

	event, err := model.NewParticipantJoinedEvent(t, participant, now)
	if err != nil {
		return nil, err
	}
	if err := insertOutboxSQLite(ctx, tx, event); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return t, nil
}

// Unpublished returns up to limit pending outbox events, oldest first.
func (r *SQLiteStore) Unpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM outbox
		 WHERE published_at IS NULL
		 ORDER BY id
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	defer rows.Close()

	var events []model.OutboxEvent
	for rows.Next() {
		var (
			ev        model.OutboxEvent
			eventType string
			createdAt int64
		)
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &eventType, &ev.Payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		ev.EventType = model.EventType(eventType)
		ev.CreatedAt = fromMillis(createdAt)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MarkPublished stamps an outbox event as delivered.
func (r *SQLiteStore) MarkPublished(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE outbox SET published_at = ? WHERE id = ?`,
		toMillis(r.now()), id,
	)
	if err != nil {
		return fmt.Errorf("mark outbox event %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("outbox event %d: %w", id, model.ErrNotFound)
	}
	return nil
}

type sqlQueryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func participantsSQLite(ctx context.Context, q sqlQueryer, tableID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT participant FROM participants WHERE table_id = ? ORDER BY position`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	participants := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func insertOutboxSQLite(ctx context.Context, tx *sql.Tx, ev model.OutboxEvent) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO outbox (aggregate_id, event_type, payload, created_at) VALUES (?, ?, ?, ?)`,
		ev.AggregateID, string(ev.EventType), ev.Payload, toMillis(ev.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTableSQLite(row rowScanner) (*model.Table, error) {
	var (
		t         model.Table
		kind      string
		price     int64
		createdAt int64
	)
	err := row.Scan(&t.ID, &kind, &t.Organizer, &t.Title, &t.Description, &t.MaxParticipants,
		&t.Country, &t.City, &t.Location, &price, &t.Date, &t.Category, &t.ImageURL, &createdAt)
	if err != nil {
		return nil, err
	}
	t.Kind = model.Kind(kind)
	t.Price = uint64(price)
	t.CreatedAt = fromMillis(createdAt)
	t.Participants = []string{}
	return &t, nil
}
