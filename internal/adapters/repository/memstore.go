package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"

	model "github.com/okian/scoutrank/internal/domain/model"
	types "github.com/okian/scoutrank/internal/domain/types"
	"github.com/okian/scoutrank/pkg/logger"
	"github.com/okian/scoutrank/pkg/metrics"
)

// slot identifies one alliance in one match.
type slot struct {
	match    int
	alliance types.Alliance
}

// eventState holds everything recorded for a single event.
//
// mu guards every map and the treap. Each team owns a critical section
// lock that Update holds across its read-modify-write, and each alliance
// slot owns one that RecordMatch holds across record and fold. Lock order
// is slot, then teams, then mu.
type eventState struct {
	mu       sync.RWMutex
	event    model.Event
	stats    map[string]model.TeamStatistics
	locks    map[string]*sync.Mutex
	slots    map[slot]*sync.Mutex
	alliance map[slot][]model.Submission
	recorded map[string]struct{}
	root     *node
}

func (ev *eventState) slotLock(k slot) *sync.Mutex {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	l, ok := ev.slots[k]
	if !ok {
		l = &sync.Mutex{}
		ev.slots[k] = l
	}
	return l
}

// reserve claims sub's key and returns the alliance partner already folded.
func (ev *eventState) reserve(sub model.Submission, k slot) (omit.Val[model.Submission], error) { //nolint:gocritic // hugeParam
	var partner omit.Val[model.Submission]
	ev.mu.Lock()
	defer ev.mu.Unlock()

	if _, ok := ev.stats[sub.TeamID]; !ok {
		return partner, fmt.Errorf("team %s at %s: %w", sub.TeamID, sub.EventID, ErrNotFound)
	}
	key := sub.Key()
	if _, ok := ev.recorded[key]; ok {
		metrics.RecordErrorByComponent("repository", "duplicate_match")
		return partner, fmt.Errorf("%s: %w", key, ErrDuplicateMatch)
	}
	if mate, ok := lo.Find(ev.alliance[k], func(o model.Submission) bool { return o.TeamID != sub.TeamID }); ok {
		partner = omit.From(mate)
	}
	ev.recorded[key] = struct{}{}
	return partner, nil
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]*eventState
	teams  atomic.Int64
	logger logger.Logger
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		events: make(map[string]*eventState),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("repository")
	}
	return s
}

func (s *MemoryStore) state(eventID string) (*eventState, error) {
	s.mu.RLock()
	ev, ok := s.events[eventID]
	s.mu.RUnlock()
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	return ev, nil
}

// CreateEvent implements Store.CreateEvent.
func (s *MemoryStore) CreateEvent(ctx context.Context, ev model.Event) error {
	s.mu.Lock()
	if _, ok := s.events[ev.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("event %s: %w", ev.ID, ErrEventExists)
	}
	s.events[ev.ID] = &eventState{
		event:    ev,
		stats:    make(map[string]model.TeamStatistics),
		locks:    make(map[string]*sync.Mutex),
		slots:    make(map[slot]*sync.Mutex),
		alliance: make(map[slot][]model.Submission),
		recorded: make(map[string]struct{}),
	}
	count := len(s.events)
	s.mu.Unlock()

	metrics.UpdateEventsTracked(count)
	s.logger.Debug(ctx, "event created", logger.String("event_id", ev.ID), logger.Any("thresholds", ev.Thresholds))
	return nil
}

// Event implements Store.Event.
func (s *MemoryStore) Event(_ context.Context, eventID string) (model.Event, error) {
	ev, err := s.state(eventID)
	if err != nil {
		return model.Event{}, err
	}
	return ev.event, nil
}

// RegisterTeam implements Store.RegisterTeam.
func (s *MemoryStore) RegisterTeam(_ context.Context, eventID, teamID string) error {
	ev, err := s.state(eventID)
	if err != nil {
		return err
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	if _, ok := ev.stats[teamID]; ok {
		return fmt.Errorf("team %s at %s: %w", teamID, eventID, ErrTeamExists)
	}
	ev.stats[teamID] = model.NewTeamStatistics(eventID, teamID)
	ev.locks[teamID] = &sync.Mutex{}
	ev.root = insert(ev.root, teamID, 0)
	metrics.UpdateTeamsTracked(int(s.teams.Add(1)))
	return nil
}

// Stats implements Store.Stats.
func (s *MemoryStore) Stats(_ context.Context, eventID, teamID string) (model.TeamStatistics, error) {
	ev, err := s.state(eventID)
	if err != nil {
		return model.TeamStatistics{}, err
	}
	ev.mu.RLock()
	defer ev.mu.RUnlock()
	st, ok := ev.stats[teamID]
	if !ok {
		return model.TeamStatistics{}, fmt.Errorf("team %s at %s: %w", teamID, eventID, ErrNotFound)
	}
	return st, nil
}

// RecordMatch implements Store.RecordMatch. The first other team folded
// on the alliance is the partner.
func (s *MemoryStore) RecordMatch(ctx context.Context, sub model.Submission, fn MatchFunc) error { //nolint:gocritic // hugeParam
	ev, err := s.state(sub.EventID)
	if err != nil {
		return err
	}
	k := slot{match: sub.MatchNumber, alliance: sub.Alliance}
	sl := ev.slotLock(k)
	sl.Lock()
	defer sl.Unlock()

	partner, err := ev.reserve(sub, k)
	if err != nil {
		return err
	}
	teams := []string{sub.TeamID}
	if mate, ok := partner.Get(); ok {
		teams = append(teams, mate.TeamID)
	}
	err = s.Update(ctx, sub.EventID, teams, func(prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
		return fn(partner, prior)
	})

	ev.mu.Lock()
	defer ev.mu.Unlock()
	if err != nil {
		delete(ev.recorded, sub.Key())
		return err
	}
	ev.alliance[k] = append(ev.alliance[k], sub)
	return nil
}

// Update implements Store.Update.
func (s *MemoryStore) Update(ctx context.Context, eventID string, teamIDs []string, fn UpdateFunc) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if len(teamIDs) == 0 {
		return nil
	}
	if len(lo.Uniq(teamIDs)) != len(teamIDs) {
		return fmt.Errorf("repeated team in %v: %w", teamIDs, ErrInvalidUpdate)
	}
	ev, err := s.state(eventID)
	if err != nil {
		return err
	}

	ev.mu.RLock()
	locks := make([]*sync.Mutex, 0, len(teamIDs))
	for _, id := range slices.Sorted(slices.Values(teamIDs)) {
		l, ok := ev.locks[id]
		if !ok {
			ev.mu.RUnlock()
			return fmt.Errorf("team %s at %s: %w", id, eventID, ErrNotFound)
		}
		locks = append(locks, l)
	}
	ev.mu.RUnlock()

	for _, l := range locks {
		l.Lock()
		defer l.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("update %s: %w", eventID, err)
	}

	ev.mu.RLock()
	prior := make([]model.TeamStatistics, len(teamIDs))
	for i, id := range teamIDs {
		prior[i] = ev.stats[id]
	}
	ev.mu.RUnlock()

	next, err := fn(prior)
	if err != nil {
		return err
	}
	if len(next) != len(teamIDs) {
		return fmt.Errorf("got %d rows for %d teams: %w", len(next), len(teamIDs), ErrInvalidUpdate)
	}
	for i, id := range teamIDs {
		if next[i].TeamID != id || next[i].EventID != eventID {
			return fmt.Errorf("row %d is %s/%s, want %s/%s: %w",
				i, next[i].EventID, next[i].TeamID, eventID, id, ErrInvalidUpdate)
		}
	}

	ev.mu.Lock()
	for i, id := range teamIDs {
		old := ev.stats[id]
		if old.RankingPoints != next[i].RankingPoints {
			ev.root = deleteNode(ev.root, id, old.RankingPoints)
			ev.root = insert(ev.root, id, next[i].RankingPoints)
		}
		ev.stats[id] = next[i]
	}
	ev.mu.Unlock()
	return nil
}

// Standings implements Store.Standings.
func (s *MemoryStore) Standings(_ context.Context, eventID string, q Query) ([]Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if q.Limit < 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, fmt.Errorf("limit %d: %w", q.Limit, ErrInvalidLimit)
	}
	ev, err := s.state(eventID)
	if err != nil {
		return nil, err
	}

	ev.mu.RLock()
	rows := make([]Entry, 0, len(ev.stats))
	collectAll(ev.root, ev.stats, &rows)
	ev.mu.RUnlock()

	assignRanksWithTies(rows)
	if err := order(rows, q); err != nil {
		metrics.RecordErrorByComponent("repository", "unknown_column")
		return nil, err
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

// Rank implements Store.Rank.
func (s *MemoryStore) Rank(ctx context.Context, eventID, teamID string) (Entry, error) {
	rows, err := s.Standings(ctx, eventID, Query{})
	if err != nil {
		return Entry{}, err
	}
	row, ok := lo.Find(rows, func(e Entry) bool { return e.Stats.TeamID == teamID })
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, fmt.Errorf("team %s at %s: %w", teamID, eventID, ErrNotFound)
	}
	return row, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context, eventID string) int {
	ev, err := s.state(eventID)
	if err != nil {
		return 0
	}
	ev.mu.RLock()
	defer ev.mu.RUnlock()
	return len(ev.stats)
}
