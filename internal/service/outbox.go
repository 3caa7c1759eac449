package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Shivanand-hulikatti/sola-table/internal/model"
	"github.com/Shivanand-hulikatti/sola-table/internal/repository"
)

// Publisher delivers an outbox event to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, ev model.OutboxEvent) error
}

// OutboxService drains pending outbox events into a Publisher.
type OutboxService struct {
	outbox    repository.OutboxRepository
	publisher Publisher
	log       *slog.Logger
}

// NewOutboxService creates a new OutboxService.
func NewOutboxService(outbox repository.OutboxRepository, publisher Publisher, log *slog.Logger) *OutboxService {
	if log == nil {
		log = slog.Default()
	}
	return &OutboxService{outbox: outbox, publisher: publisher, log: log}
}

// ProcessUnpublished publishes up to limit pending events and returns how many
// were delivered. An event that fails to publish stays pending for the next pass.
func (s *OutboxService) ProcessUnpublished(ctx context.Context, limit int) (int, error) {
	events, err := s.outbox.Unpublished(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("load outbox: %w", err)
	}

	published := 0
	for _, ev := range events {
		if err := s.publisher.Publish(ctx, ev); err != nil {
			s.log.ErrorContext(ctx, "failed to publish outbox event",
				slog.Int64("event_id", ev.ID),
				slog.String("event_type", string(ev.EventType)),
				slog.String("error", err.Error()),
			)
			continue
		}

		if err := s.outbox.MarkPublished(ctx, ev.ID); err != nil {
			s.log.ErrorContext(ctx, "failed to mark outbox event as published",
				slog.Int64("event_id", ev.ID),
				slog.String("error", err.Error()),
			)
			continue
		}

		published++
		s.log.DebugContext(ctx, "published outbox event",
			slog.Int64("event_id", ev.ID),
			slog.String("event_type", string(ev.EventType)),
			slog.String("aggregate_id", ev.AggregateID),
		)
	}

	return published, nil
}

// Run drains the outbox every interval until ctx is cancelled.
func (s *OutboxService) Run(ctx context.Context, interval time.Duration, batchSize int) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("publisher stopped")
			return
		case <-ticker.C:
			if _, err := s.ProcessUnpublished(ctx, batchSize); err != nil {
				s.log.ErrorContext(ctx, "error processing outbox events", slog.String("error", err.Error()))
			}
		}
	}
}
