// Package service wires validation, deduplication, the submission queue and
// the scoring pipeline into the scouting ranking service.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/aarondl/opt/omit"
	"github.com/google/uuid"
	"github.com/samber/lo"

	queue "github.com/okian/scoutrank/internal/adapters/mq/queue"
	worker "github.com/okian/scoutrank/internal/adapters/mq/worker"
	repository "github.com/okian/scoutrank/internal/adapters/repository"
	"github.com/okian/scoutrank/internal/domain/dedupe"
	"github.com/okian/scoutrank/internal/domain/model"
	"github.com/okian/scoutrank/internal/domain/ranking"
	"github.com/okian/scoutrank/internal/domain/stats"
	"github.com/okian/scoutrank/internal/domain/types"
	"github.com/okian/scoutrank/pkg/logger"
	"github.com/okian/scoutrank/pkg/metrics"
)

// Service accepts scouting submissions and maintains event standings.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	workerCount       int
	queueSize         int
	dedupeSize        int
	maxStandingsLimit int

	started bool
	cancel  context.CancelFunc
	logger  logger.Logger
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

// WithQueueSize sets the maximum number of queued submissions.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithMaxStandingsLimit caps the rows returned by Standings. Zero means no cap.
func WithMaxStandingsLimit(limit int) Option {
	return func(s *Service) {
		if limit >= 0 {
			s.maxStandingsLimit = limit
		}
	}
}

// WithStore replaces the default in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Events can be registered before Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10000,
		dedupeSize:  50000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start creates the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s)
	s.pool.Start(runCtx)
	s.cancel = cancel
	s.started = true

	s.logger.Info(ctx, "scouting service started",
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop halts the workers and cancels the submissions they are processing.
// Submissions still queued are dropped; use Drain to process them first.
// Nothing dropped or cancelled stays recorded, so it may be submitted again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.halt(context.Background())
	s.logger.Info(context.Background(), "scouting service stopped")
}

// Drain stops accepting submissions and waits until every queued
// submission has been processed or ctx expires. On expiry the rest is
// dropped as by Stop.
func (s *Service) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	if err := s.pool.Shutdown(ctx); err != nil {
		s.halt(ctx)
		return err
	}
	s.cancel()
	processed, failed := s.pool.Stats()
	s.logger.Info(ctx, "scouting service drained",
		logger.Int("processed", int(processed)),
		logger.Int("failed", int(failed)),
	)
	return nil
}

// halt cancels in-flight work, stops the workers and releases the dedupe
// keys of queued submissions that will never be processed.
func (s *Service) halt(ctx context.Context) {
	s.cancel()
	s.pool.Stop()
	_ = s.queue.Close()
	dropped := 0
	for sub := range s.queue.Dequeue() {
		s.deduper.Unrecord(ctx, sub.Key())
		dropped++
	}
	if dropped > 0 {
		s.logger.Warn(ctx, "queued submissions dropped", logger.Int("dropped", dropped))
	}
}

// RegisterEvent creates an event and a zeroed statistics row for every
// team on its roster.
func (s *Service) RegisterEvent(ctx context.Context, ev model.Event, teams []string) error {
	if err := model.Validate(ev); err != nil {
		metrics.RecordErrorByComponent("service", "invalid_event")
		return fmt.Errorf("event %q: %w", ev.ID, err)
	}
	if err := s.store.CreateEvent(ctx, ev); err != nil {
		return err
	}
	for _, team := range lo.Uniq(teams) {
		if team == "" {
			return fmt.Errorf("event %s roster: empty team id: %w", ev.ID, model.ErrInvalidInput)
		}
		if err := s.store.RegisterTeam(ctx, ev.ID, team); err != nil {
			return err
		}
	}
	s.logger.Info(ctx, "event registered",
		logger.String("event_id", ev.ID),
		logger.Int("teams", s.store.Count(ctx, ev.ID)),
	)
	return nil
}

// Submit validates a submission and queues it for scoring. Each team may
// submit once per match.
func (s *Service) Submit(ctx context.Context, sub model.Submission) (string, error) { //nolint:gocritic // hugeParam: submissions are values
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return "", ErrNotStarted
	}
	if err := model.Validate(sub); err != nil {
		metrics.RecordSubmissionRejected()
		return "", err
	}
	if _, err := s.store.Stats(ctx, sub.EventID, sub.TeamID); err != nil {
		metrics.RecordSubmissionRejected()
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", sub.Key(), stats.ErrMissingPriorState)
		}
		return "", err
	}
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	key := sub.Key()
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordSubmissionDuplicate()
		return "", fmt.Errorf("%s: %w", key, ErrDuplicate)
	}
	if err := s.queue.Enqueue(ctx, sub); err != nil {
		s.deduper.Unrecord(ctx, key)
		if errors.Is(err, queue.ErrFull) {
			return "", fmt.Errorf("%s: %w", key, ErrBackpressure)
		}
		if errors.Is(err, queue.ErrClosed) {
			return "", fmt.Errorf("%s: %w", key, ErrNotStarted)
		}
		return "", err
	}
	metrics.RecordSubmissionAccepted()
	s.logger.Debug(ctx, "submission queued",
		logger.String("submission_id", sub.ID),
		logger.String("key", key),
	)
	return sub.ID, nil
}

// Process scores one submission and folds it into the submitting team's
// statistics. When the alliance partner's submission for the same match was
// folded first, both teams are credited with the alliance ranking points.
// On failure nothing is recorded and the submission may be sent again.
func (s *Service) Process(ctx context.Context, sub model.Submission) error { //nolint:gocritic // hugeParam: submissions are values
	key := sub.Key()
	ev, err := s.store.Event(ctx, sub.EventID)
	if err != nil {
		s.deduper.Unrecord(ctx, key)
		return fmt.Errorf("process %s: %w", key, err)
	}
	res, err := s.fold(ctx, ev, sub)
	if err != nil {
		if !errors.Is(err, repository.ErrDuplicateMatch) {
			s.deduper.Unrecord(ctx, key)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("process %s: %w", key, stats.ErrMissingPriorState)
		}
		return fmt.Errorf("process %s: %w", key, err)
	}

	metrics.RecordEvaluation(res.PartnerPresent)
	metrics.RecordRankingPointsAwarded(res.TotalRP)
	metrics.RecordRankingPointComponent("movement", res.MovementRP)
	metrics.RecordRankingPointComponent("goal", res.GoalRP)
	metrics.RecordRankingPointComponent("pattern", res.PatternRP)
	metrics.RecordRankingPointComponent("win", res.WinRP)
	metrics.RecordRankingPointComponent("tie", res.TieRP)
	s.logger.Debug(ctx, "match folded",
		logger.Bool("partner", res.PartnerPresent),
		logger.Int("rp", res.TotalRP),
	)
	return nil
}

// fold records sub and folds it, crediting the partner when one was
// folded first.
func (s *Service) fold(ctx context.Context, ev model.Event, sub model.Submission) (ranking.Result, error) { //nolint:gocritic // hugeParam
	var res ranking.Result
	contribution := stats.ContributionOf(sub.Record)
	err := s.store.RecordMatch(ctx, sub, func(mate omit.Val[model.Submission], prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
		var partner omit.Val[model.PartnerRecord]
		if m, ok := mate.Get(); ok {
			partner = omit.From(m.Record.AsPartner())
		}
		res = ranking.Evaluate(sub.Record, partner, ev.Thresholds)

		next := make([]model.TeamStatistics, len(prior))
		var ferr error
		if next[0], ferr = stats.Fold(&prior[0], contribution, res); ferr != nil {
			return nil, ferr
		}
		if len(prior) > 1 {
			if next[1], ferr = stats.Share(&prior[1], res); ferr != nil {
				return nil, ferr
			}
		}
		return next, nil
	})
	return res, err
}

// Standings returns an event's ranked table.
func (s *Service) Standings(ctx context.Context, eventID string, q repository.Query) ([]types.Entry, error) {
	if s.maxStandingsLimit > 0 && (q.Limit == 0 || q.Limit > s.maxStandingsLimit) {
		q.Limit = s.maxStandingsLimit
	}
	rows, err := s.store.Standings(ctx, eventID, q)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(e repository.Entry, _ int) types.Entry { return toEntry(e) }), nil
}

// Rank returns a single team's standings row.
func (s *Service) Rank(ctx context.Context, eventID, teamID string) (types.Entry, error) {
	row, err := s.store.Rank(ctx, eventID, teamID)
	if err != nil {
		return types.Entry{}, err
	}
	return toEntry(row), nil
}

// Stats returns a team's raw statistics row.
func (s *Service) Stats(ctx context.Context, eventID, teamID string) (model.TeamStatistics, error) {
	return s.store.Stats(ctx, eventID, teamID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"dedupeEntries": s.deduper.Size(),
	}
	if s.pool != nil {
		processed, failed := s.pool.Stats()
		out["processed"] = processed
		out["failed"] = failed
	}
	if s.queue != nil {
		out["queueLength"] = s.queue.Len()
	}
	return out
}

func toEntry(e repository.Entry) types.Entry {
	st := e.Stats
	return types.Entry{
		Rank:              e.Rank,
		TeamID:            st.TeamID,
		MatchesPlayed:     st.MatchesPlayed,
		AutonAverage:      st.AutonAverage,
		TeleopAverage:     st.TeleopAverage,
		EndgameAverage:    st.EndgameAverage,
		PatternsAverage:   st.PatternsAverage,
		DepotAverage:      st.DepotAverage,
		ClassifiedAverage: st.ClassifiedAverage,
		OverflowAverage:   st.OverflowAverage,
		RankingPoints:     st.RankingPoints,
		RPUpdated:         st.RPUpdated,
	}
}
