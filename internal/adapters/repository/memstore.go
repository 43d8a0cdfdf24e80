package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/rostrumhq/rostrum/internal/domain/model"
	"github.com/rostrumhq/rostrum/internal/domain/ranking"
	"github.com/rostrumhq/rostrum/pkg/metrics"
)

// Default store configuration constants.
const (
	defaultShardCount = 8
)

// scoreKey identifies one judge's score for one participant within an event.
type scoreKey struct {
	studentID string
	judgeID   string
}

// eventRecord holds the mutable state of one event. Guarded by the owning
// shard's lock.
type eventRecord struct {
	event        model.Event
	participants []model.Participant
	judges       []model.Judge
	scores       map[scoreKey]float64
}

func (r *eventRecord) hasParticipant(id string) bool {
	for _, p := range r.participants {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (r *eventRecord) hasJudge(id string) bool {
	for _, j := range r.judges {
		if j.ID == id {
			return true
		}
	}
	return false
}

// shard owns a subset of events, keyed by event id hash.
type shard struct {
	mu     sync.RWMutex
	events map[string]*eventRecord
}

// MemStore is a sharded, in-memory Store implementation. Event ids are
// hashed onto shards so writes against different events do not contend.
type MemStore struct {
	shards     []*shard
	shardCount int

	// Event registration order, for ListEvents.
	orderMu sync.Mutex
	order   []string
}

// NewMemStore creates a new in-memory store with configuration options.
func NewMemStore(ctx context.Context, opts ...Option) *MemStore {
	s := &MemStore{
		shardCount: defaultShardCount,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{events: make(map[string]*eventRecord)}
	}
	return s
}

func (s *MemStore) shardFor(eventID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(eventID))
	return s.shards[int(h.Sum32())%s.shardCount]
}

// CreateEvent registers a new event.
func (s *MemStore) CreateEvent(ctx context.Context, event model.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	sh := s.shardFor(event.EventID)
	sh.mu.Lock()
	if _, exists := sh.events[event.EventID]; exists {
		sh.mu.Unlock()
		return fmt.Errorf("%w: event %s", ErrDuplicateID, event.EventID)
	}
	sh.events[event.EventID] = &eventRecord{
		event:  event,
		scores: make(map[scoreKey]float64),
	}
	sh.mu.Unlock()

	s.orderMu.Lock()
	s.order = append(s.order, event.EventID)
	s.orderMu.Unlock()

	s.updateGauges(ctx)
	return nil
}

// GetEvent returns one event by id.
func (s *MemStore) GetEvent(ctx context.Context, eventID string) (model.Event, error) {
	sh := s.shardFor(eventID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.events[eventID]
	if !ok {
		return model.Event{}, fmt.Errorf("%w: %s", ErrNotFound, eventID)
	}
	return rec.event, nil
}

// ListEvents returns all events in registration order.
func (s *MemStore) ListEvents(ctx context.Context) ([]model.Event, error) {
	s.orderMu.Lock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	s.orderMu.Unlock()

	out := make([]model.Event, 0, len(ids))
	for _, id := range ids {
		event, err := s.GetEvent(ctx, id)
		if err != nil {
			continue // removed concurrently
		}
		out = append(out, event)
	}
	return out, nil
}

// AddParticipant adds a participant to an event's roster.
func (s *MemStore) AddParticipant(ctx context.Context, eventID string, p model.Participant) error {
	sh := s.shardFor(eventID)
	sh.mu.Lock()
	rec, ok := sh.events[eventID]
	if !ok {
		sh.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, eventID)
	}
	if rec.hasParticipant(p.ID) {
		sh.mu.Unlock()
		return fmt.Errorf("%w: participant %s", ErrDuplicateID, p.ID)
	}
	rec.participants = append(rec.participants, p)
	sh.mu.Unlock()

	s.updateGauges(ctx)
	return nil
}

// ListParticipants returns an event's roster in registration order.
func (s *MemStore) ListParticipants(ctx context.Context, eventID string) ([]model.Participant, error) {
	sh := s.shardFor(eventID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, eventID)
	}
	out := make([]model.Participant, len(rec.participants))
	copy(out, rec.participants)
	return out, nil
}

// AddJudge adds a judge to an event's panel.
func (s *MemStore) AddJudge(ctx context.Context, eventID string, j model.Judge) error {
	sh := s.shardFor(eventID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	rec, ok := sh.events[eventID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, eventID)
	}
	if rec.hasJudge(j.ID) {
		return fmt.Errorf("%w: judge %s", ErrDuplicateID, j.ID)
	}
	rec.judges = append(rec.judges, j)
	return nil
}

// ListJudges returns an event's panel in registration order.
func (s *MemStore) ListJudges(ctx context.Context, eventID string) ([]model.Judge, error) {
	sh := s.shardFor(eventID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, eventID)
	}
	out := make([]model.Judge, len(rec.judges))
	copy(out, rec.judges)
	return out, nil
}

// ApplyScore records one judge's score for one participant, replacing any
// earlier score for the same (event, student, judge) triple.
func (s *MemStore) ApplyScore(ctx context.Context, sub model.Submission) (bool, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	sh := s.shardFor(sub.EventID)
	sh.mu.Lock()
	rec, ok := sh.events[sub.EventID]
	if !ok {
		sh.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrNotFound, sub.EventID)
	}
	if !rec.hasParticipant(sub.StudentID) {
		sh.mu.Unlock()
		return false, fmt.Errorf("%w: participant %s", ErrUnknownReference, sub.StudentID)
	}
	if !rec.hasJudge(sub.JudgeID) {
		sh.mu.Unlock()
		return false, fmt.Errorf("%w: judge %s", ErrUnknownReference, sub.JudgeID)
	}

	k := scoreKey{studentID: sub.StudentID, judgeID: sub.JudgeID}
	_, replaced := rec.scores[k]
	rec.scores[k] = sub.Value
	sh.mu.Unlock()

	s.updateGauges(ctx)
	return replaced, nil
}

// Snapshot returns an immutable copy of one event's state.
func (s *MemStore) Snapshot(ctx context.Context, eventID string) (Snapshot, error) {
	sh := s.shardFor(eventID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()

	rec, ok := sh.events[eventID]
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, eventID)
	}

	snap := Snapshot{
		Event:        rec.event,
		Participants: make([]ranking.Participant, len(rec.participants)),
		Judges:       make([]model.Judge, len(rec.judges)),
		Scores:       make([]ranking.Score, 0, len(rec.scores)),
	}
	for i, p := range rec.participants {
		snap.Participants[i] = ranking.Participant{ID: p.ID, Name: p.Name}
	}
	copy(snap.Judges, rec.judges)
	for k, value := range rec.scores {
		snap.Scores = append(snap.Scores, ranking.Score{
			StudentID: k.studentID,
			JudgeID:   k.judgeID,
			Value:     value,
		})
	}
	// Map iteration order is random; fix it so snapshots are reproducible.
	sort.Slice(snap.Scores, func(i, j int) bool {
		if snap.Scores[i].JudgeID != snap.Scores[j].JudgeID {
			return snap.Scores[i].JudgeID < snap.Scores[j].JudgeID
		}
		return snap.Scores[i].StudentID < snap.Scores[j].StudentID
	})
	return snap, nil
}

// Stats returns current store occupancy.
func (s *MemStore) Stats(ctx context.Context) Counts {
	var c Counts
	for _, sh := range s.shards {
		sh.mu.RLock()
		c.Events += len(sh.events)
		for _, rec := range sh.events {
			c.Participants += len(rec.participants)
			c.Scores += len(rec.scores)
		}
		sh.mu.RUnlock()
	}
	return c
}

// updateGauges refreshes store occupancy gauges. Callers must not hold a
// shard lock; Stats takes each shard lock in turn.
func (s *MemStore) updateGauges(ctx context.Context) {
	c := s.Stats(ctx)
	metrics.UpdateStoreEvents(c.Events)
	metrics.UpdateStoreParticipants(c.Participants)
	metrics.UpdateStoreScores(c.Scores)
}
