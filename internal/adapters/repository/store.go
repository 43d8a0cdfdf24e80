// Package repository defines the event store interface and errors.
package repository

import (
	"context"

	"github.com/rostrumhq/rostrum/internal/domain/model"
	"github.com/rostrumhq/rostrum/internal/domain/ranking"
)

// Snapshot is an immutable copy of one event's state, shaped for the
// ranking engine. Slices are owned by the caller; mutating them never
// affects the store.
type Snapshot struct {
	Event        model.Event
	Participants []ranking.Participant
	Judges       []model.Judge
	Scores       []ranking.Score
}

// Counts summarizes store occupancy for stats and gauges.
type Counts struct {
	Events       int
	Participants int
	Scores       int
}

// Store provides read/write access to events, rosters, panels and scores.
type Store interface {
	// CreateEvent registers a new event.
	// Returns ErrDuplicateID if the event id is already taken.
	CreateEvent(ctx context.Context, event model.Event) error

	// GetEvent returns one event. Returns ErrNotFound for unknown ids.
	GetEvent(ctx context.Context, eventID string) (model.Event, error)

	// ListEvents returns all events in registration order.
	ListEvents(ctx context.Context) ([]model.Event, error)

	// AddParticipant adds a participant to an event's roster.
	// Returns ErrNotFound for unknown events and ErrDuplicateID when the
	// participant id is already on the roster.
	AddParticipant(ctx context.Context, eventID string, p model.Participant) error

	// ListParticipants returns an event's roster in registration order.
	ListParticipants(ctx context.Context, eventID string) ([]model.Participant, error)

	// AddJudge adds a judge to an event's panel, with the same error
	// contract as AddParticipant.
	AddJudge(ctx context.Context, eventID string, j model.Judge) error

	// ListJudges returns an event's panel in registration order.
	ListJudges(ctx context.Context, eventID string) ([]model.Judge, error)

	// ApplyScore records one judge's score for one participant. A later
	// score for the same (event, student, judge) triple replaces the
	// earlier one. Returns true when an existing score was replaced.
	// Returns ErrNotFound for unknown events and ErrUnknownReference when
	// the student or judge is not registered for the event.
	ApplyScore(ctx context.Context, sub model.Submission) (replaced bool, err error)

	// Snapshot returns an immutable copy of one event's state.
	// Returns ErrNotFound for unknown events.
	Snapshot(ctx context.Context, eventID string) (Snapshot, error)

	// Stats returns current store occupancy.
	Stats(ctx context.Context) Counts
}
