package simulate

import (
	"errors"
	"fmt"
)

// teamsPerMatch is two alliances of two teams.
const teamsPerMatch = 4

// ErrInvalidConfig is returned for a generator configuration that cannot
// produce a schedule.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds configuration for a generated event.
type Config struct {
	EventID string // Event identifier written to the file
	Name    string // Display name
	Teams   int    // Roster size; at least four
	Matches int    // Number of qualification matches
	Seed    uint64 // Same seed, same event
	// FirstTeam is the team number of the first roster entry.
	FirstTeam int
}

// DefaultConfig returns a small qualifier.
func DefaultConfig() Config {
	return Config{
		EventID:   "sim-qual",
		Name:      "Simulated Qualifier",
		Teams:     24,
		Matches:   36,
		Seed:      1,
		FirstTeam: 10000,
	}
}

func (c Config) validate() error {
	switch {
	case c.EventID == "":
		return fmt.Errorf("%w: event id is required", ErrInvalidConfig)
	case c.Teams < teamsPerMatch:
		return fmt.Errorf("%w: need at least %d teams, got %d", ErrInvalidConfig, teamsPerMatch, c.Teams)
	case c.Matches < 1:
		return fmt.Errorf("%w: need at least one match, got %d", ErrInvalidConfig, c.Matches)
	case c.FirstTeam < 1:
		return fmt.Errorf("%w: team numbers start at 1, got %d", ErrInvalidConfig, c.FirstTeam)
	}
	return nil
}
