package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

const tableColumns = `id, kind, organizer, title, description, max_participants,
	country, city, location, price, date, category, image_url, created_at`

// PostgresStore implements TableRepository and OutboxRepository on PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts the record and its table_created event in one transaction.
func (r *PostgresStore) Create(ctx context.Context, t *model.Table) (err error) {
	event, err := model.NewTableCreatedEvent(t, t.CreatedAt)
	if err != nil {
		return err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO tables (`+tableColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, string(t.Kind), t.Organizer, t.Title, t.Description, t.MaxParticipants,
		t.Country, t.City, t.Location, int64(t.Price), t.Date, t.Category, t.ImageURL, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert table: %w", err)
	}

	if err = insertOutboxPG(ctx, tx, event); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// GetByID returns a single record with its participants.
func (r *PostgresStore) GetByID(ctx context.Context, kind model.Kind, id string) (*model.Table, error) {
	t, err := scanTablePG(r.db.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = $1 AND kind = $2`,
		id, string(kind),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFound(kind)
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	t.Participants, err = participantsPG(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List returns all records of kind ordered by date, then creation time.
func (r *PostgresStore) List(ctx context.Context, kind model.Kind) ([]model.Table, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE kind = $1 ORDER BY date, created_at, id`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []model.Table
	index := make(map[string]int)
	for rows.Next() {
		t, err := scanTablePG(rows)
		if err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		index[t.ID] = len(tables)
		tables = append(tables, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	prows, err := r.db.Query(ctx,
		`SELECT p.table_id, p.participant
		 FROM participants p JOIN tables t ON t.id = p.table_id
		 WHERE t.kind = $1
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

// Join performs a concurrency-safe join inside a single transaction.
//
// SELECT … FOR UPDATE takes a row-level exclusive lock on the record, so a
// concurrent join on the same record blocks until this transaction commits or
// rolls back. The capacity check in model.Table.Join therefore always sees the
// latest participant list and two joins can never both take the last seat.
func (r *PostgresStore) Join(ctx context.Context, kind model.Kind, id, participant string, now time.Time) (_ *model.Table, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	t, err := scanTablePG(tx.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM tables WHERE id = $1 AND kind = $2 FOR UPDATE`,
		id, string(kind),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NotFound(kind)
		}
		return nil, fmt.Errorf("lock table row: %w", err)
	}

	t.Participants, err = participantsPG(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err = t.Join(participant, now); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO participants (table_id, participant, position, joined_at)
		 VALUES ($1, $2, $3, $4)`,
		id, participant, len(t.Participants), now.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE tables SET participant_count = $2 WHERE id = $1`,
		id, len(t.Participants),
	)
	if err != nil {
		return nil, fmt.Errorf("update participant_count: %w", err)
	}

	event, err := model.NewParticipantJoinedEvent(t, participant, now)
	if err != nil {
		return nil, err
	}
	if err = insertOutboxPG(ctx, tx, event); err != nil {
		return nil, err
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return t, nil
}

// Unpublished returns up to limit pending outbox events, oldest first.
func (r *PostgresStore) Unpublished(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, aggregate_id, event_type, payload, created_at
		 FROM outbox
		 WHERE published_at IS NULL
		 ORDER BY id
		 LIMIT $1`,
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
		)
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &eventType, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		ev.EventType = model.EventType(eventType)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// MarkPublished stamps an outbox event as delivered.
func (r *PostgresStore) MarkPublished(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE outbox SET published_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark outbox event %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("outbox event %d: %w", id, model.ErrNotFound)
	}
	return nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func participantsPG(ctx context.Context, q queryer, tableID string) ([]string, error) {
	rows, err := q.Query(ctx,
		`SELECT participant FROM participants WHERE table_id = $1 ORDER BY position`,
		tableID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	participants, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan participants: %w", err)
	}
	if participants == nil {
		participants = []string{}
	}
	return participants, nil
}

func insertOutboxPG(ctx context.Context, tx pgx.Tx, ev model.OutboxEvent) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_id, event_type, payload, created_at)
		 VALUES ($1, $2, $3, $4)`,
		ev.AggregateID, string(ev.EventType), ev.Payload, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

func scanTablePG(row pgx.Row) (*model.Table, error) {
	var (
		t     model.Table
		kind  string
		price int64
	)
	err := row.Scan(&t.ID, &kind, &t.Organizer, &t.Title, &t.Description, &t.MaxParticipants,
		&t.Country, &t.City, &t.Location, &price, &t.Date, &t.Category, &t.ImageURL, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	t.Kind = model.Kind(kind)
	t.Price = uint64(price)
	t.CreatedAt = t.CreatedAt.UTC()
	t.Participants = []string{}
	return &t, nil
}
