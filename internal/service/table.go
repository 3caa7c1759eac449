// Package service implements business logic, validation, and orchestration
// between the transports (HTTP, CLI) and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
	"github.com/Shivanand-hulikatti/sola-table/internal/repository"
)

const tracerName = "github.com/Shivanand-hulikatti/sola-table/internal/service"

// TableService orchestrates record creation and joins.
type TableService struct {
	tables repository.TableRepository
	log    *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
	newID  func() string
}

// Option customises a TableService.
type Option func(*TableService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *TableService) { s.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *TableService) { s.newID = newID }
}

// WithLogger sets the logger; slog.Default is used otherwise.
func WithLogger(log *slog.Logger) Option {
	return func(s *TableService) { s.log = log }
}

// NewTableService constructs a TableService with its dependencies.
func NewTableService(tables repository.TableRepository, opts ...Option) *TableService {
	s := &TableService{
		tables: tables,
		log:    slog.Default(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates the request and stores a new record owned by organizer.
func (s *TableService) Create(ctx context.Context, kind model.Kind, organizer string, req model.CreateTableRequest) (_ *model.Table, err error) {
	ctx, span := s.tracer.Start(ctx, "TableService.Create",
		trace.WithAttributes(attribute.String("table.kind", string(kind))))
	defer func() { endSpan(span, err) }()

	t, err := model.NewTable(s.newID(), kind, organizer, req, s.now().Truncate(time.Millisecond))
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("table.id", t.ID))

	if err := s.tables.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}

	s.log.InfoContext(ctx, "table created",
		slog.String("table_id", t.ID),
		slog.String("kind", string(kind)),
		slog.String("organizer", t.Organizer),
		slog.Int("max_participants", t.MaxParticipants),
		slog.Int64("date", t.Date),
	)
	return t, nil
}

// Join adds participant to the record identified by id.
func (s *TableService) Join(ctx context.Context, kind model.Kind, id, participant string) (_ *model.Table, err error) {
	ctx, span := s.tracer.Start(ctx, "TableService.Join",
		trace.WithAttributes(
			attribute.String("table.kind", string(kind)),
			attribute.String("table.id", id),
		))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(participant) == "" {
		return nil, model.InvalidInput(kind, "participant", "participant is required")
	}
	if id == "" {
		return nil, model.InvalidInput(kind, "id", kind.Label()+" id is required")
	}

	t, err := s.tables.Join(ctx, kind, id, participant, s.now())
	if err != nil {
		var domainErr *model.Error
		if errors.As(err, &domainErr) {
			s.log.InfoContext(ctx, "join rejected",
				slog.String("table_id", id),
				slog.String("participant", participant),
				slog.String("code", domainErr.Name()),
			)
			return nil, err
		}
		return nil, fmt.Errorf("join %s: %w", kind, err)
	}

	s.log.InfoContext(ctx, "participant joined",
		slog.String("table_id", id),
		slog.String("participant", participant),
		slog.Int("current_participants", t.CurrentParticipants()),
		slog.Int("max_participants", t.MaxParticipants),
	)
	return t, nil
}

// Get returns a single record.
func (s *TableService) Get(ctx context.Context, kind model.Kind, id string) (*model.Table, error) {
	if id == "" {
		return nil, model.InvalidInput(kind, "id", kind.Label()+" id is required")
	}
	t, err := s.tables.GetByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return t, nil
}

// List returns all records of kind.
func (s *TableService) List(ctx context.Context, kind model.Kind) ([]model.Table, error) {
	tables, err := s.tables.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return tables, nil
}

// Participants returns the ordered participant list of a record.
func (s *TableService) Participants(ctx context.Context, kind model.Kind, id string) ([]string, error) {
	t, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	return t.Participants, nil
}

// Now exposes the service clock so transports stamp output consistently.
func (s *TableService) Now() time.Time {
	return s.now()
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
