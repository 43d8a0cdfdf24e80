// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	submissionqueue "github.com/rostrumhq/rostrum/internal/adapters/mq/queue"
	workerpool "github.com/rostrumhq/rostrum/internal/adapters/mq/worker"
	repository "github.com/rostrumhq/rostrum/internal/adapters/repository"
	"github.com/rostrumhq/rostrum/internal/domain/dedupe"
	"github.com/rostrumhq/rostrum/internal/domain/model"
	"github.com/rostrumhq/rostrum/internal/domain/ranking"
	"github.com/rostrumhq/rostrum/internal/domain/types"
	"github.com/rostrumhq/rostrum/pkg/logger"
	"github.com/rostrumhq/rostrum/pkg/metrics"
)

// Service implements the API dependencies for the judging system.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	deduper dedupe.Deduper
	queue   submissionqueue.Queue
	pool    *workerpool.Pool

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	shardCount    int
	defaultMethod ranking.Method

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of shards in the event store.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithDefaultMethod sets the ranking method used when requests name none.
func WithDefaultMethod(method ranking.Method) Option {
	return func(s *Service) {
		if method != "" {
			s.defaultMethod = method
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     100000,
		dedupeSize:    50000,
		shardCount:    8,
		defaultMethod: ranking.MethodSpearman,
		logger:        nil, // set on Start when not configured
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting judging service...")

	s.store = repository.NewMemStore(ctx, repository.WithShardCount(s.shardCount))
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "judging service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("defaultMethod", s.defaultMethod.String()),
	)

	return nil
}

// Stop gracefully shuts down the service, draining queued submissions.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping judging service...")

	// Closing the queue lets the workers drain it before exiting.
	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}

	s.started = false
	s.logger.Info(ctx, "judging service stopped")
}

// ready reports whether Start has completed, so the façade methods can fail
// with ErrNotStarted instead of dereferencing nil components.
func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// SeenAndRecord atomically checks if a submission id was seen and records it
// if not. Returns true if the submission was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	if s.ready() != nil {
		return false
	}
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission ID from the seen list, allowing a retry.
func (s *Service) Unrecord(ctx context.Context, id string) {
	if s.ready() != nil {
		return
	}
	s.deduper.Unrecord(ctx, id)
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a score for asynchronous processing. Returns false on
// backpressure.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) bool {
	if s.ready() != nil {
		return false
	}
	if sub.TS.IsZero() {
		sub.TS = time.Now().UTC()
	}
	ok := s.queue.Enqueue(ctx, sub)
	if ok {
		metrics.RecordSubmissionAccepted()
		metrics.UpdateQueueSize(s.queue.Len(ctx))
	}
	return ok
}

// CreateEvent registers a new event.
func (s *Service) CreateEvent(ctx context.Context, event model.Event) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.CreateEvent(ctx, event)
}

// GetEvent returns one event by id.
func (s *Service) GetEvent(ctx context.Context, eventID string) (model.Event, error) {
	if err := s.ready(); err != nil {
		return model.Event{}, err
	}
	return s.store.GetEvent(ctx, eventID)
}

// ListEvents returns all registered events.
func (s *Service) ListEvents(ctx context.Context) ([]model.Event, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListEvents(ctx)
}

// AddParticipant adds a participant to an event's roster.
func (s *Service) AddParticipant(ctx context.Context, eventID string, p model.Participant) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.AddParticipant(ctx, eventID, p)
}

// ListParticipants returns an event's roster.
func (s *Service) ListParticipants(ctx context.Context, eventID string) ([]model.Participant, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListParticipants(ctx, eventID)
}

// AddJudge adds a judge to an event's panel.
func (s *Service) AddJudge(ctx context.Context, eventID string, j model.Judge) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.AddJudge(ctx, eventID, j)
}

// ListJudges returns an event's panel.
func (s *Service) ListJudges(ctx context.Context, eventID string) ([]model.Judge, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.store.ListJudges(ctx, eventID)
}

// Ranking computes the current standing of an event's participants using
// the named method ("" selects the configured default). The engine works on
// an immutable snapshot, so concurrent score writes never corrupt a
// computation; they simply land in the next one.
func (s *Service) Ranking(ctx context.Context, eventID, method string) ([]types.Row, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	m, err := ranking.ParseMethod(method)
	if err != nil {
		metrics.RecordRankingError()
		return nil, err
	}
	if method == "" {
		m = s.defaultMethod
	}

	snap, err := s.store.Snapshot(ctx, eventID)
	if err != nil {
		metrics.RecordRankingError()
		return nil, fmt.Errorf("snapshot event %s: %w", eventID, err)
	}

	start := time.Now()
	results := ranking.Compute(snap.Participants, snap.Scores, m)
	metrics.RecordRankingLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordRankingComputed(m.String())

	// Judge display names are attached here, not in the engine: the
	// engine only ever sees judge ids on scores.
	judgeNames := make(map[string]string, len(snap.Judges))
	for _, j := range snap.Judges {
		judgeNames[j.ID] = j.Name
	}

	rows := make([]types.Row, len(results))
	for i, res := range results {
		perJudge := make([]types.JudgeRank, len(res.PerJudgeRanks))
		for k, pj := range res.PerJudgeRanks {
			perJudge[k] = types.JudgeRank{
				JudgeID:   pj.JudgeID,
				JudgeName: judgeNames[pj.JudgeID],
				Rank:      pj.Rank,
			}
		}
		rows[i] = types.Row{
			FinalRank:     res.FinalRank,
			ParticipantID: res.Participant.ID,
			Name:          res.Participant.Name,
			TotalScore:    res.TotalScore,
			AverageScore:  res.AverageScore,
			RankSum:       res.RankSum,
			PerJudgeRanks: perJudge,
		}
	}

	s.logger.Debug(ctx, "computed ranking",
		logger.String("eventID", eventID),
		logger.String("method", m.String()),
		logger.Int("rows", len(rows)),
	)
	return rows, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"defaultMethod": s.defaultMethod.String(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		counts := s.store.Stats(ctx)

		stats["queueLength"] = queueLen
		stats["events"] = counts.Events
		stats["participants"] = counts.Participants
		stats["scores"] = counts.Scores

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}
