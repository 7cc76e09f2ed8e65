// Package stats folds scored matches into a team's running event statistics.
package stats

import (
	"errors"

	model "github.com/okian/scoutrank/internal/domain/model"
	ranking "github.com/okian/scoutrank/internal/domain/ranking"
	scoring "github.com/okian/scoutrank/internal/domain/scoring"
)

var (
	// ErrMissingPriorState is returned when a team has no statistics row to
	// fold into. Rows are created when the team is registered.
	ErrMissingPriorState = errors.New("missing prior team statistics")
	// ErrNoPartner is returned when sharing ranking points from a result
	// that had no alliance partner.
	ErrNoPartner = errors.New("ranking result has no alliance partner")
)

// ContributionOf extracts the averaged values of a single match record.
func ContributionOf(rec model.MatchRecord) model.Contribution {
	b := scoring.Score(rec)
	return model.Contribution{
		AutonPoints:         b.Auton,
		TeleopPoints:        b.Teleop,
		EndgamePoints:       b.Endgame,
		Patterns:            rec.Auton.Patterns + rec.Teleop.Patterns,
		DepotArtifacts:      rec.Teleop.DepotArtifacts,
		ClassifiedArtifacts: rec.Auton.ClassifiedArtifacts + rec.Teleop.ClassifiedArtifacts,
		OverflowArtifacts:   rec.Auton.OverflowArtifacts + rec.Teleop.OverflowArtifacts,
	}
}

// Fold returns prior advanced by one match. Every average moves with the
// same match count and the prior value is left unchanged.
func Fold(prior *model.TeamStatistics, c model.Contribution, res ranking.Result) (model.TeamStatistics, error) {
	if prior == nil {
		return model.TeamStatistics{}, ErrMissingPriorState
	}
	next := *prior
	n := float64(prior.MatchesPlayed)

	next.AutonAverage = runningMean(prior.AutonAverage, n, c.AutonPoints)
	next.TeleopAverage = runningMean(prior.TeleopAverage, n, c.TeleopPoints)
	next.EndgameAverage = runningMean(prior.EndgameAverage, n, c.EndgamePoints)
	next.PatternsAverage = runningMean(prior.PatternsAverage, n, c.Patterns)
	next.DepotAverage = runningMean(prior.DepotAverage, n, c.DepotArtifacts)
	next.ClassifiedAverage = runningMean(prior.ClassifiedAverage, n, c.ClassifiedArtifacts)
	next.OverflowAverage = runningMean(prior.OverflowAverage, n, c.OverflowArtifacts)

	next.MatchesPlayed = prior.MatchesPlayed + 1
	next.RankingPoints = prior.RankingPoints + res.TotalRP
	next.RPUpdated = res.PartnerPresent
	return next, nil
}

// Share credits an alliance partner with the ranking points of a match the
// partner did not submit. Averages and match count are untouched.
func Share(prior *model.TeamStatistics, res ranking.Result) (model.TeamStatistics, error) {
	if prior == nil {
		return model.TeamStatistics{}, ErrMissingPriorState
	}
	if !res.PartnerPresent {
		return model.TeamStatistics{}, ErrNoPartner
	}
	next := *prior
	next.RankingPoints = prior.RankingPoints + res.TotalRP
	next.RPUpdated = true
	return next, nil
}

func runningMean(avg, n float64, v int) float64 {
	return (avg*n + float64(v)) / (n + 1)
}
