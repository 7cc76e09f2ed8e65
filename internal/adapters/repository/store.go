// Package repository stores events, scouted matches and per-team statistics.
package repository

import (
	"context"

	"github.com/aarondl/opt/omit"

	model "github.com/okian/scoutrank/internal/domain/model"
)

// Entry represents a standings row.
type Entry struct {
	Rank  int
	Stats model.TeamStatistics
}

// UpdateFunc computes new statistics from consistent prior state. prior and
// the returned slice are indexed like the team IDs passed to Update.
type UpdateFunc func(prior []model.TeamStatistics) ([]model.TeamStatistics, error)

// MatchFunc folds a match into team statistics. partner is the first other
// submission already folded on the same alliance, if any. prior and the
// returned slice hold the submitting team first and the partner second.
type MatchFunc func(partner omit.Val[model.Submission], prior []model.TeamStatistics) ([]model.TeamStatistics, error)

// Query selects and orders standings rows. The zero value sorts by ranking
// points, highest first, and returns every row.
type Query struct {
	SortBy    Column
	Ascending bool
	// Limit caps the number of rows; 0 means no cap.
	Limit int
}

// Store provides read/write access to scouting state.
type Store interface {
	// CreateEvent registers an event. Returns ErrEventExists for a known ID.
	CreateEvent(ctx context.Context, ev model.Event) error
	// Event returns a registered event or ErrNotFound.
	Event(ctx context.Context, eventID string) (model.Event, error)
	// RegisterTeam creates a zeroed statistics row for a team at an event.
	RegisterTeam(ctx context.Context, eventID, teamID string) error
	// Stats returns a team's statistics or ErrNotFound.
	Stats(ctx context.Context, eventID, teamID string) (model.TeamStatistics, error)

	// RecordMatch stores a submission and folds it with fn as one step.
	// Matches on the same alliance are folded one at a time, so of two
	// partners exactly one observes the other. When fn or the write
	// fails nothing is recorded and the match can be retried.
	RecordMatch(ctx context.Context, sub model.Submission, fn MatchFunc) error

	// Update runs fn with the current statistics of teamIDs while holding
	// each team's critical section, then commits every returned row or none.
	Update(ctx context.Context, eventID string, teamIDs []string, fn UpdateFunc) error

	// Standings returns ranked rows for an event.
	Standings(ctx context.Context, eventID string, q Query) ([]Entry, error)
	// Rank returns a single team's standings row.
	Rank(ctx context.Context, eventID, teamID string) (Entry, error)
	// Count returns the number of teams registered to an event.
	Count(ctx context.Context, eventID string) int
}
