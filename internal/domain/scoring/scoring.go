// Package scoring converts scouted phase observations into DECODE point subtotals.
package scoring

import (
	model "github.com/okian/scoutrank/internal/domain/model"
	types "github.com/okian/scoutrank/internal/domain/types"
)

// Per-unit point values.
const (
	ClassifiedPoints  = 3
	OverflowPoints    = 1
	DepotPoints       = 1
	PatternPoints     = 2
	LeavePoints       = 3
	PartialBasePoints = 5
	FullBasePoints    = 10
)

// Breakdown holds a match record's subtotals per phase.
type Breakdown struct {
	Auton   int
	Teleop  int
	Endgame int
	Total   int
}

// ScoreAuton returns the autonomous-phase subtotal.
func ScoreAuton(obs model.AutonObservation) int {
	points := ClassifiedPoints*obs.ClassifiedArtifacts +
		OverflowPoints*obs.OverflowArtifacts +
		PatternPoints*obs.Patterns
	if obs.Leave {
		points += LeavePoints
	}
	return points
}

// ScoreTeleop returns the driver-controlled-phase subtotal.
func ScoreTeleop(obs model.TeleopObservation) int {
	return ClassifiedPoints*obs.ClassifiedArtifacts +
		OverflowPoints*obs.OverflowArtifacts +
		DepotPoints*obs.DepotArtifacts +
		PatternPoints*obs.Patterns
}

// ScoreEndgame returns the points for a final robot position. Values
// outside the enumeration score nothing.
func ScoreEndgame(loc types.EndgameLocation) int {
	switch loc {
	case types.EndgamePartialBase:
		return PartialBasePoints
	case types.EndgameFullBase:
		return FullBasePoints
	default:
		return 0
	}
}

// Score computes every phase subtotal of a match record.
func Score(rec model.MatchRecord) Breakdown {
	b := Breakdown{
		Auton:   ScoreAuton(rec.Auton),
		Teleop:  ScoreTeleop(rec.Teleop),
		Endgame: ScoreEndgame(rec.Endgame),
	}
	b.Total = b.Auton + b.Teleop + b.Endgame
	return b
}
