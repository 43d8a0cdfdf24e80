// Package model contains domain models passed between layers.
package model

import "time"

// Event is a judged competition: a roster of participants scored by a panel
// of judges.
type Event struct {
	EventID   string    // unique id
	Name      string    // display name
	CreatedAt time.Time // registration time
}

// Participant is one ranked subject within an event. ID is the identity;
// Name is display-only.
type Participant struct {
	ID   string
	Name string
}

// Judge is one member of an event's panel. The ranking engine never sees
// Judge values; judge names are attached to results afterward by matching
// IDs.
type Judge struct {
	ID   string
	Name string
}

// Submission is one judge's score for one participant, submitted by a
// client and applied asynchronously. SubmissionID exists for idempotency;
// the (EventID, StudentID, JudgeID) triple identifies the score itself,
// and a later submission for the same triple replaces the earlier one.
type Submission struct {
	SubmissionID string
	EventID      string
	StudentID    string
	JudgeID      string
	Value        float64
	TS           time.Time
}
