package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/sola-table/internal/config"
	"github.com/Shivanand-hulikatti/sola-table/internal/database"
	"github.com/Shivanand-hulikatti/sola-table/internal/logger"
	"github.com/Shivanand-hulikatti/sola-table/internal/model"
)

var testNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

type joinResult struct {
	participant string
	err         error
}

type backend struct {
	tables TableRepository
	outbox OutboxRepository
}

func newMemoryBackend(t *testing.T) backend {
	t.Helper()
	mem := NewMemoryStore()
	return backend{tables: mem, outbox: mem}
}

func newSQLiteBackend(t *testing.T) backend {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	lite := NewSQLiteStore(db)
	return backend{tables: lite, outbox: lite}
}

func newPostgresBackend(t *testing.T) backend {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := database.NewPool(ctx, dsn, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	_, err = pool.Exec(ctx, `TRUNCATE participants, outbox, tables`)
	require.NoError(t, err)
	pg := NewPostgresStore(pool)
	return backend{tables: pg, outbox: pg}
}

func createTestTable(t *testing.T, kind model.Kind, maxParticipants int, date time.Time) *model.Table {
	t.Helper()
	tbl, err := model.NewTable(uuid.NewString(), kind, "organizer", model.CreateTableRequest{
		Title:           "Test Table",
		Description:     "Description",
		MaxParticipants: maxParticipants,
		Country:         "Korea",
		City:            "Seoul",
		Location:        "Location",
		Price:           1000,
		Date:            date.Unix(),
		Category:        "Study",
		ImageURL:        "image.url",
	}, testNow.Truncate(time.Millisecond))
	require.NoError(t, err)
	return tbl
}

func TestMemoryStore(t *testing.T)   { runStoreTests(t, newMemoryBackend) }
func TestSQLiteStore(t *testing.T)   { runStoreTests(t, newSQLiteBackend) }
func TestPostgresStore(t *testing.T) { runStoreTests(t, newPostgresBackend) }

func runStoreTests(t *testing.T, newBackend func(t *testing.T) backend) {
	tomorrow := testNow.Add(24 * time.Hour)

	t.Run("CreateAndGet", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		tbl := createTestTable(t, model.KindTable, 5, tomorrow)
		require.NoError(t, b.tables.Create(ctx, tbl))

		got, err := b.tables.GetByID(ctx, model.KindTable, tbl.ID)
		require.NoError(t, err)
		assert.Equal(t, tbl, got)
		assert.Empty(t, got.Participants)
	})

	t.Run("GetUnknownOrWrongKind", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		tbl := createTestTable(t, model.KindTable, 5, tomorrow)
		require.NoError(t, b.tables.Create(ctx, tbl))

		_, err := b.tables.GetByID(ctx, model.KindTable, uuid.NewString())
		assert.ErrorIs(t, err, model.ErrNotFound)

		_, err = b.tables.GetByID(ctx, model.KindMeetup, tbl.ID)
		assert.ErrorIs(t, err, model.ErrNotFound)

		_, err = b.tables.Join(ctx, model.KindMeetup, tbl.ID, "alice", testNow)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("JoinPersistsParticipants", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		tbl := createTestTable(t, model.KindTable, 5, tomorrow)
		require.NoError(t, b.tables.Create(ctx, tbl))

		updated, err := b.tables.Join(ctx, model.KindTable, tbl.ID, "alice", testNow)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice"}, updated.Participants)

		_, err = b.tables.Join(ctx, model.KindTable, tbl.ID, "bob", testNow)
		require.NoError(t, err)

		got, err := b.tables.GetByID(ctx, model.KindTable, tbl.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "bob"}, got.Participants)
	})

	t.Run("FailedJoinLeavesRecordUntouched", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		tbl := createTestTable(t, model.KindTable, 1, tomorrow)
		require.NoError(t, b.tables.Create(ctx, tbl))

		_, err := b.tables.Join(ctx, model.KindTable, tbl.ID, "a", testNow)
		require.NoError(t, err)

		_, err = b.tables.Join(ctx, model.KindTable, tbl.ID, "b", testNow)
		assert.ErrorIs(t, err, model.ErrFull)
		_, err = b.tables.Join(ctx, model.KindTable, tbl.ID, "a", testNow)
		assert.ErrorIs(t, err, model.ErrAlreadyJoined)
		_, err = b.tables.Join(ctx, model.KindTable, tbl.ID, "organizer", testNow)
		assert.ErrorIs(t, err, model.ErrOrganizerCannotJoin)
		_, err = b.tables.Join(ctx, model.KindTable, tbl.ID, "c", tomorrow.Add(time.Second))
		assert.ErrorIs(t, err, model.ErrExpired)

		got, err := b.tables.GetByID(ctx, model.KindTable, tbl.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, got.Participants)

		// Only create + one join reached the outbox.
		events, err := b.outbox.Unpublished(ctx, 100)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, model.EventTableCreated, events[0].EventType)
		assert.Equal(t, model.EventParticipantJoined, events[1].EventType)
	})

	t.Run("ConcurrentJoinsNeverOverfill", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		const capacity, contenders = 10, 40
		tbl := createTestTable(t, model.KindMeetup, capacity, tomorrow)
		require.NoError(t, b.tables.Create(ctx, tbl))

		results := make(chan joinResult, contenders)
		var wg sync.WaitGroup
		for i := 0; i < contenders; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				p := fmt.Sprintf("participant-%02d", i)
				_, err := b.tables.Join(ctx, model.KindMeetup, tbl.ID, p, testNow)
				results <- joinResult{participant: p, err: err}
			}(i)
		}
		wg.Wait()
		close(results)

		var joined, full int
		for r := range results {
			switch {
			case r.err == nil:
				joined++
			default:
				require.ErrorIs(t, r.err, model.ErrFull, r.participant)
				full++
			}
		}
		assert.Equal(t, capacity, joined)
		assert.Equal(t, contenders-capacity, full)

		got, err := b.tables.GetByID(ctx, model.KindMeetup, tbl.ID)
		require.NoError(t, err)
		assert.Len(t, got.Participants, capacity)
	})

	t.Run("ListOrdersByDate", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		later := createTestTable(t, model.KindTable, 5, tomorrow.Add(time.Hour))
		sooner := createTestTable(t, model.KindTable, 5, tomorrow)
		meetup := createTestTable(t, model.KindMeetup, 5, tomorrow)
		for _, tbl := range []*model.Table{later, sooner, meetup} {
			require.NoError(t, b.tables.Create(ctx, tbl))
		}
		_, err := b.tables.Join(ctx, model.KindTable, later.ID, "alice", testNow)
		require.NoError(t, err)

		tables, err := b.tables.List(ctx, model.KindTable)
		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Equal(t, sooner.ID, tables[0].ID)
		assert.Equal(t, later.ID, tables[1].ID)
		assert.Empty(t, tables[0].Participants)
		assert.Equal(t, []string{"alice"}, tables[1].Participants)
	})

	t.Run("OutboxPublishCycle", func(t *testing.T) {
		b := newBackend(t)
		ctx := context.Background()
		tbl := createTestTable(t, model.KindTable, 5, tomorrow)
		require.NoError(t, b.tables.Create(ctx, tbl))
		_, err := b.tables.Join(ctx, model.KindTable, tbl.ID, "alice", testNow)
		require.NoError(t, err)

		events, err := b.outbox.Unpublished(ctx, 1)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, tbl.ID, events[0].AggregateID)

		var payload model.TableCreatedPayload
		require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
		assert.Equal(t, "organizer", payload.Organizer)

		require.NoError(t, b.outbox.MarkPublished(ctx, events[0].ID))

		events, err = b.outbox.Unpublished(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, model.EventParticipantJoined, events[0].EventType)

		err = b.outbox.MarkPublished(ctx, 999999)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})
}

func TestOpen_MemoryDriverKeepsNoOutbox(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, &config.Config{StorageDriver: config.DriverMemory}, logger.Discard())
	require.NoError(t, err)
	defer store.Close()

	assert.Nil(t, store.Outbox)

	tbl := createTestTable(t, model.KindTable, 2, testNow.Add(time.Hour))
	require.NoError(t, store.Tables.Create(ctx, tbl))
	_, err = store.Tables.Join(ctx, model.KindTable, tbl.ID, "alice", testNow)
	require.NoError(t, err)

	mem, ok := store.Tables.(*MemoryStore)
	require.True(t, ok)
	assert.Empty(t, mem.outbox)

	pending, err := mem.Unpublished(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestNewMemory_RecordsOutbox(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NotNil(t, store.Outbox)

	tbl := createTestTable(t, model.KindTable, 2, testNow.Add(time.Hour))
	require.NoError(t, store.Tables.Create(ctx, tbl))

	pending, err := store.Outbox.Unpublished(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}
