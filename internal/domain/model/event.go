// Package model contains domain models passed between layers.
package model

// Default ranking-point thresholds for a DECODE event.
const (
	DefaultMovementThreshold = 16
	DefaultGoalThreshold     = 36
	DefaultPatternThreshold  = 18
)

// Thresholds are the per-event minimums for the alliance ranking points.
// Each comparison is inclusive.
type Thresholds struct {
	Movement int `validate:"gte=0"`
	Goal     int `validate:"gte=0"`
	Pattern  int `validate:"gte=0"`
}

// DefaultThresholds returns the season defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Movement: DefaultMovementThreshold,
		Goal:     DefaultGoalThreshold,
		Pattern:  DefaultPatternThreshold,
	}
}

// Event is a competition that teams are registered to and matches are
// scouted at.
type Event struct {
	ID         string `validate:"required,max=50"`
	Name       string `validate:"max=200"`
	Thresholds Thresholds
}
