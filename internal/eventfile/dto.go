package eventfile

import (
	"github.com/okian/scoutrank/internal/domain/model"
	"github.com/okian/scoutrank/internal/domain/types"
)

type thresholdsDoc struct {
	Movement *int `yaml:"movement"`
	Goal     *int `yaml:"goal"`
	Pattern  *int `yaml:"pattern"`
}

// apply overrides the fields set in the document.
func (d *thresholdsDoc) apply(th model.Thresholds) model.Thresholds {
	if d == nil {
		return th
	}
	if d.Movement != nil {
		th.Movement = *d.Movement
	}
	if d.Goal != nil {
		th.Goal = *d.Goal
	}
	if d.Pattern != nil {
		th.Pattern = *d.Pattern
	}
	return th
}

func thresholdsOf(th model.Thresholds) *thresholdsDoc {
	return &thresholdsDoc{Movement: &th.Movement, Goal: &th.Goal, Pattern: &th.Pattern}
}

type autonDoc struct {
	Classified int  `yaml:"classified,omitempty"`
	Overflow   int  `yaml:"overflow,omitempty"`
	Patterns   int  `yaml:"patterns,omitempty"`
	Leave      bool `yaml:"leave,omitempty"`
}

type teleopDoc struct {
	Classified int `yaml:"classified,omitempty"`
	Overflow   int `yaml:"overflow,omitempty"`
	Depot      int `yaml:"depot,omitempty"`
	Patterns   int `yaml:"patterns,omitempty"`
}

type recordDoc struct {
	Auton   autonDoc              `yaml:"auton,omitempty"`
	Teleop  teleopDoc             `yaml:"teleop,omitempty"`
	Endgame types.EndgameLocation `yaml:"endgame,omitempty"`
	Win     bool                  `yaml:"win,omitempty"`
	Tie     bool                  `yaml:"tie,omitempty"`
}

func recordOf(r model.MatchRecord) recordDoc {
	return recordDoc{
		Auton: autonDoc{
			Classified: r.Auton.ClassifiedArtifacts,
			Overflow:   r.Auton.OverflowArtifacts,
			Patterns:   r.Auton.Patterns,
			Leave:      r.Auton.Leave,
		},
		Teleop: teleopDoc{
			Classified: r.Teleop.ClassifiedArtifacts,
			Overflow:   r.Teleop.OverflowArtifacts,
			Depot:      r.Teleop.DepotArtifacts,
			Patterns:   r.Teleop.Patterns,
		},
		Endgame: r.Endgame,
		Win:     r.Win,
		Tie:     r.Tie,
	}
}

func (d recordDoc) model() model.MatchRecord {
	return model.MatchRecord{
		Auton: model.AutonObservation{
			ClassifiedArtifacts: d.Auton.Classified,
			OverflowArtifacts:   d.Auton.Overflow,
			Patterns:            d.Auton.Patterns,
			Leave:               d.Auton.Leave,
		},
		Teleop: model.TeleopObservation{
			ClassifiedArtifacts: d.Teleop.Classified,
			OverflowArtifacts:   d.Teleop.Overflow,
			DepotArtifacts:      d.Teleop.Depot,
			Patterns:            d.Teleop.Patterns,
		},
		Endgame: d.Endgame,
		Win:     d.Win,
		Tie:     d.Tie,
	}
}

// partnerDoc is the part of a record the partner contributes. The match
// outcome is the submitting team's own and is not accepted here.
type partnerDoc struct {
	Auton   autonDoc              `yaml:"auton,omitempty"`
	Teleop  teleopDoc             `yaml:"teleop,omitempty"`
	Endgame types.EndgameLocation `yaml:"endgame,omitempty"`
}

func (d partnerDoc) model() model.PartnerRecord {
	return recordDoc{Auton: d.Auton, Teleop: d.Teleop, Endgame: d.Endgame}.model().AsPartner()
}

type matchDoc struct {
	ID          string            `yaml:"id,omitempty"`
	Match       int               `yaml:"match"`
	Alliance    types.Alliance    `yaml:"alliance"`
	Team        string            `yaml:"team"`
	Record      recordDoc         `yaml:",inline"`
	DC          bool              `yaml:"dc,omitempty"`
	Motif       types.Motif       `yaml:"motif,omitempty"`
	Synergy     types.Synergy     `yaml:"synergy,omitempty"`
	Performance types.Performance `yaml:"performance,omitempty"`
	Notes       string            `yaml:"notes,omitempty"`
}

type eventDoc struct {
	Event struct {
		ID         string         `yaml:"id"`
		Name       string         `yaml:"name,omitempty"`
		Thresholds *thresholdsDoc `yaml:"thresholds"`
	} `yaml:"event"`
	Teams   []string   `yaml:"teams"`
	Matches []matchDoc `yaml:"matches,omitempty"`
}

type scoreDoc struct {
	Self       recordDoc      `yaml:"self"`
	Partner    *partnerDoc    `yaml:"partner"`
	Thresholds *thresholdsDoc `yaml:"thresholds"`
}
