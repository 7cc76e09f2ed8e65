// Package simulate generates synthetic scouting events and checks the
// standings they produce.
package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"

	"github.com/samber/lo"

	"github.com/okian/scoutrank/internal/domain/model"
	"github.com/okian/scoutrank/internal/domain/scoring"
	"github.com/okian/scoutrank/internal/domain/types"
	"github.com/okian/scoutrank/internal/eventfile"
	"github.com/okian/scoutrank/pkg/logger"
)

// Team skill bands. Most teams are average; a few are elite or struggling.
const (
	bandStruggling = 0.25
	bandAverage    = 0.55
	bandStrong     = 0.8
	bandElite      = 0.95
	disconnectRate = 0.02
)

// Generate builds an event with a random qualification schedule. Every
// match seats four distinct teams and the win and tie flags agree with the
// scored alliance totals.
func Generate(ctx context.Context, cfg Config, th model.Thresholds) (eventfile.Bundle, error) {
	if err := cfg.validate(); err != nil {
		return eventfile.Bundle{}, err
	}
	r := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	teams := make([]string, cfg.Teams)
	skill := make(map[string]float64, cfg.Teams)
	for i := range teams {
		teams[i] = strconv.Itoa(cfg.FirstTeam + i)
		skill[teams[i]] = pickBand(r)
	}

	b := eventfile.Bundle{
		Event:       model.Event{ID: cfg.EventID, Name: cfg.Name, Thresholds: th},
		Teams:       teams,
		Submissions: make([]model.Submission, 0, cfg.Matches*teamsPerMatch),
	}
	for m := 1; m <= cfg.Matches; m++ {
		if err := ctx.Err(); err != nil {
			return eventfile.Bundle{}, fmt.Errorf("generate match %d: %w", m, err)
		}
		b.Submissions = append(b.Submissions, generateMatch(r, cfg.EventID, m, teams, skill)...)
	}

	logger.Get().Info(ctx, "generated event",
		logger.String("event_id", cfg.EventID),
		logger.Int("teams", cfg.Teams),
		logger.Int("matches", cfg.Matches),
		logger.Int("submissions", len(b.Submissions)),
	)
	return b, nil
}

func pickBand(r *rand.Rand) float64 {
	switch n := r.IntN(10); {
	case n == 0:
		return bandStruggling
	case n < 6:
		return bandAverage
	case n < 9:
		return bandStrong
	default:
		return bandElite
	}
}

func generateMatch(r *rand.Rand, eventID string, match int, teams []string, skill map[string]float64) []model.Submission {
	seats := r.Perm(len(teams))[:teamsPerMatch]
	motif := types.Motif(1 + r.IntN(3))

	subs := make([]model.Submission, teamsPerMatch)
	for i, seat := range seats {
		team := teams[seat]
		alliance := types.AllianceRed
		if i >= teamsPerMatch/2 {
			alliance = types.AllianceBlue
		}
		subs[i] = model.Submission{
			EventID:      eventID,
			MatchNumber:  match,
			Alliance:     alliance,
			TeamID:       team,
			Record:       generateRecord(r, skill[team]),
			Disconnected: r.Float64() < disconnectRate,
			Motif:        motif,
			Synergy:      types.Synergy(1 + r.IntN(4)),
			Performance:  types.Performance(1 + r.IntN(3)),
		}
	}

	red := allianceScore(subs[:2])
	blue := allianceScore(subs[2:])
	for i := range subs {
		own, other := red, blue
		if subs[i].Alliance == types.AllianceBlue {
			own, other = blue, red
		}
		subs[i].Record.Win = own > other
		subs[i].Record.Tie = own == other
	}
	return subs
}

func generateRecord(r *rand.Rand, skill float64) model.MatchRecord {
	upTo := func(maxAtElite int) int {
		return r.IntN(int(float64(maxAtElite)*skill) + 1)
	}

	endgame := types.EndgameNone
	switch p := r.Float64(); {
	case p < skill*0.6:
		endgame = types.EndgameFullBase
	case p < skill:
		endgame = types.EndgamePartialBase
	}

	return model.MatchRecord{
		Auton: model.AutonObservation{
			ClassifiedArtifacts: upTo(6),
			OverflowArtifacts:   upTo(2),
			Patterns:            upTo(3),
			Leave:               r.Float64() < 0.4+skill/2,
		},
		Teleop: model.TeleopObservation{
			ClassifiedArtifacts: upTo(24),
			OverflowArtifacts:   upTo(6),
			DepotArtifacts:      upTo(4),
			Patterns:            upTo(6),
		},
		Endgame: endgame,
	}
}

func allianceScore(subs []model.Submission) int {
	return lo.SumBy(subs, func(s model.Submission) int { return scoring.Score(s.Record).Total })
}
