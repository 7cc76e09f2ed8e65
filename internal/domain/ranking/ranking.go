// Package ranking decides which ranking-point criteria an alliance earned in a match.
package ranking

import (
	"github.com/aarondl/opt/omit"

	model "github.com/okian/scoutrank/internal/domain/model"
	scoring "github.com/okian/scoutrank/internal/domain/scoring"
	types "github.com/okian/scoutrank/internal/domain/types"
)

// Fixed ranking-point values and the alliance endgame bonus.
const (
	WinRP             = 3
	TieRP             = 1
	BothFullBaseBonus = 10
)

// Components are the five ranking-point criteria. All five are reported
// whether or not a partner was present.
type Components struct {
	MovementRP int
	GoalRP     int
	PatternRP  int
	WinRP      int
	TieRP      int
}

// Result is the outcome of evaluating one team's match.
type Result struct {
	Components
	TotalRP int
	// PartnerPresent reports whether the alliance criteria were evaluated.
	PartnerPresent bool
}

// Evaluate computes the ranking points a team earns for a match.
//
// Without a partner the alliance criteria are zero and the total is zero;
// win and tie points are still reported as components.
func Evaluate(self model.MatchRecord, partner omit.Val[model.PartnerRecord], th model.Thresholds) Result {
	res := Result{Components: Components{
		WinRP: points(self.Win, WinRP),
		TieRP: points(self.Tie, TieRP),
	}}

	mate, ok := partner.Get()
	if !ok {
		return res
	}
	res.PartnerPresent = true

	bonus := 0
	if self.Endgame == types.EndgameFullBase && mate.Endgame == types.EndgameFullBase {
		bonus = BothFullBaseBonus
	}
	endgame := scoring.ScoreEndgame(self.Endgame) + scoring.ScoreEndgame(mate.Endgame) + bonus
	leave := points(self.Auton.Leave, scoring.LeavePoints) + points(mate.Auton.Leave, scoring.LeavePoints)
	scored := scoredArtifacts(self.Auton, self.Teleop) + scoredArtifacts(mate.Auton, mate.Teleop)
	patterns := scoring.PatternPoints *
		(self.Auton.Patterns + self.Teleop.Patterns + mate.Auton.Patterns + mate.Teleop.Patterns)

	res.MovementRP = reached(leave+endgame, th.Movement)
	res.GoalRP = reached(scored, th.Goal)
	res.PatternRP = reached(patterns, th.Pattern)
	res.TotalRP = res.MovementRP + res.GoalRP + res.PatternRP + res.WinRP + res.TieRP
	return res
}

// scoredArtifacts counts artifacts toward the goal criterion. Patterns are
// not artifacts and do not count.
func scoredArtifacts(a model.AutonObservation, t model.TeleopObservation) int {
	return a.ClassifiedArtifacts + a.OverflowArtifacts +
		t.ClassifiedArtifacts + t.OverflowArtifacts + t.DepotArtifacts
}

func reached(value, threshold int) int {
	if value >= threshold {
		return 1
	}
	return 0
}

func points(earned bool, value int) int {
	if earned {
		return value
	}
	return 0
}
