package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names a domain event recorded in the outbox.
type EventType string

const (
	EventTableCreated      EventType = "table_created"
	EventParticipantJoined EventType = "participant_joined"
)

// OutboxEvent is a domain event stored alongside the mutation that produced it.
type OutboxEvent struct {
	ID          int64      `json:"id"`
	AggregateID string     `json:"aggregate_id"`
	EventType   EventType  `json:"event_type"`
	Payload     []byte     `json:"payload"`
	CreatedAt   time.Time  `json:"created_at"`
	PublishedAt *time.Time `json:"published_at"`
}

// TableCreatedPayload is the body of a table_created event.
type TableCreatedPayload struct {
	TableID         string `json:"table_id"`
	Kind            Kind   `json:"kind"`
	Organizer       string `json:"organizer"`
	Title           string `json:"title"`
	MaxParticipants int    `json:"max_participants"`
	Date            int64  `json:"date"`
}

// ParticipantJoinedPayload is the body of a participant_joined event.
type ParticipantJoinedPayload struct {
	TableID             string `json:"table_id"`
	Kind                Kind   `json:"kind"`
	Participant         string `json:"participant"`
	CurrentParticipants int    `json:"current_participants"`
	MaxParticipants     int    `json:"max_participants"`
}

// NewTableCreatedEvent builds the outbox entry for a freshly created record.
func NewTableCreatedEvent(t *Table, at time.Time) (OutboxEvent, error) {
	return newOutboxEvent(t.ID, EventTableCreated, TableCreatedPayload{
		TableID:         t.ID,
		Kind:            t.Kind,
		Organizer:       t.Organizer,
		Title:           t.Title,
		MaxParticipants: t.MaxParticipants,
		Date:            t.Date,
	}, at)
}

// NewParticipantJoinedEvent builds the outbox entry for a successful join.
func NewParticipantJoinedEvent(t *Table, participant string, at time.Time) (OutboxEvent, error) {
	return newOutboxEvent(t.ID, EventParticipantJoined, ParticipantJoinedPayload{
		TableID:             t.ID,
		Kind:                t.Kind,
		Participant:         participant,
		CurrentParticipants: len(t.Participants),
		MaxParticipants:     t.MaxParticipants,
	}, at)
}

func newOutboxEvent(aggregateID string, typ EventType, payload any, at time.Time) (OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return OutboxEvent{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return OutboxEvent{
		AggregateID: aggregateID,
		EventType:   typ,
		Payload:     body,
		CreatedAt:   at.UTC(),
	}, nil
}
