// Package model defines the core domain types for the table registry.
package model

import (
	"encoding/json"
	"slices"
	"strings"
	"time"
)

// Kind distinguishes the two record variants. Both share the same rules;
// the kind only changes routing and error naming.
type Kind string

const (
	KindTable  Kind = "table"
	KindMeetup Kind = "meetup"
)

// Valid reports whether k is a known record kind.
func (k Kind) Valid() bool {
	return k == KindTable || k == KindMeetup
}

// Label returns the capitalised kind, e.g. "Table".
func (k Kind) Label() string {
	switch k {
	case KindMeetup:
		return "Meetup"
	default:
		return "Table"
	}
}

// Table is an event record created by an organizer that participants can join.
type Table struct {
	ID              string    `json:"id"`
	Kind            Kind      `json:"kind"`
	Organizer       string    `json:"organizer"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	MaxParticipants int       `json:"max_participants"`
	Participants    []string  `json:"participants"`
	Country         string    `json:"country"`
	City            string    `json:"city"`
	Location        string    `json:"location"`
	Price           uint64    `json:"price"`
	Date            int64     `json:"date"`
	Category        string    `json:"category"`
	ImageURL        string    `json:"image_url"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewTable validates req and builds a fresh record with no participants.
func NewTable(id string, kind Kind, organizer string, req CreateTableRequest, createdAt time.Time) (*Table, error) {
	if !kind.Valid() {
		return nil, InvalidInput(kind, "kind", "kind must be table or meetup")
	}
	if strings.TrimSpace(organizer) == "" {
		return nil, InvalidInput(kind, "organizer", "organizer is required")
	}
	if err := req.Validate(kind); err != nil {
		return nil, err
	}
	return &Table{
		ID:              id,
		Kind:            kind,
		Organizer:       organizer,
		Title:           req.Title,
		Description:     req.Description,
		MaxParticipants: req.MaxParticipants,
		Participants:    []string{},
		Country:         req.Country,
		City:            req.City,
		Location:        req.Location,
		Price:           req.Price,
		Date:            req.Date,
		Category:        req.Category,
		ImageURL:        req.ImageURL,
		CreatedAt:       createdAt.UTC(),
	}, nil
}

// CurrentParticipants returns the number of joined participants.
func (t *Table) CurrentParticipants() int {
	return len(t.Participants)
}

// Remaining returns the number of available seats.
func (t *Table) Remaining() int {
	return t.MaxParticipants - len(t.Participants)
}

// IsFull returns true when no seats remain.
func (t *Table) IsFull() bool {
	return len(t.Participants) >= t.MaxParticipants
}

// IsExpired reports whether the event date lies strictly before now.
func (t *Table) IsExpired(now time.Time) bool {
	return now.Unix() > t.Date
}

// HasParticipant reports whether id already joined.
func (t *Table) HasParticipant(id string) bool {
	return slices.Contains(t.Participants, id)
}

// Join appends participant after checking, in order: self-join, expiry,
// duplicates and capacity. On error the record is left untouched.
func (t *Table) Join(participant string, now time.Time) error {
	if strings.TrimSpace(participant) == "" {
		return InvalidInput(t.Kind, "participant", "participant is required")
	}
	if participant == t.Organizer {
		return newError(CodeOrganizerCannotJoin, t.Kind)
	}
	if t.IsExpired(now) {
		return newError(CodeExpired, t.Kind)
	}
	if t.HasParticipant(participant) {
		return newError(CodeAlreadyJoined, t.Kind)
	}
	if t.IsFull() {
		return newError(CodeFull, t.Kind)
	}
	t.Participants = append(t.Participants, participant)
	return nil
}

// Clone returns a deep copy so callers cannot alias stored participant slices.
func (t *Table) Clone() *Table {
	c := *t
	c.Participants = slices.Clone(t.Participants)
	if c.Participants == nil {
		c.Participants = []string{}
	}
	return &c
}

// MarshalJSON adds the derived participant counter used by meetup clients.
func (t Table) MarshalJSON() ([]byte, error) {
	type table Table
	participants := t.Participants
	if participants == nil {
		participants = []string{}
	}
	t.Participants = participants
	return json.Marshal(struct {
		table
		CurrentParticipants int `json:"current_participants"`
	}{table(t), len(participants)})
}

// ErrorResponse is the JSON error envelope returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
