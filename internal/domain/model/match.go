package model

import (
	"fmt"

	types "github.com/okian/scoutrank/internal/domain/types"
)

// AutonObservation holds what a scout counted during the autonomous phase.
type AutonObservation struct {
	ClassifiedArtifacts int `validate:"gte=0"`
	OverflowArtifacts   int `validate:"gte=0"`
	Patterns            int `validate:"gte=0"`
	Leave               bool
}

// TeleopObservation holds what a scout counted during the driver-controlled phase.
type TeleopObservation struct {
	ClassifiedArtifacts int `validate:"gte=0"`
	OverflowArtifacts   int `validate:"gte=0"`
	DepotArtifacts      int `validate:"gte=0"`
	Patterns            int `validate:"gte=0"`
}

// MatchRecord is one team's scouted performance in one match.
type MatchRecord struct {
	Auton   AutonObservation
	Teleop  TeleopObservation
	Endgame types.EndgameLocation `validate:"enum"`
	Win     bool
	Tie     bool
}

// PartnerRecord is the part of a partner's record that counts toward the
// alliance ranking points.
type PartnerRecord struct {
	Auton   AutonObservation
	Teleop  TeleopObservation
	Endgame types.EndgameLocation `validate:"enum"`
}

// AsPartner projects the record as seen by the other team on the alliance.
func (r MatchRecord) AsPartner() PartnerRecord {
	return PartnerRecord{Auton: r.Auton, Teleop: r.Teleop, Endgame: r.Endgame}
}

// Submission is a scouted match record together with the context it was
// collected in.
type Submission struct {
	ID           string
	EventID      string         `validate:"required,max=50"`
	MatchNumber  int            `validate:"gte=1"`
	Alliance     types.Alliance `validate:"enum"`
	TeamID       string         `validate:"required,max=20"`
	Record       MatchRecord
	Disconnected bool
	Motif        types.Motif       `validate:"enum"`
	Synergy      types.Synergy     `validate:"enum"`
	Performance  types.Performance `validate:"enum"`
	Notes        string            `validate:"max=2000"`
}

// Key identifies the team's slot in a match. At most one submission may
// exist per key.
func (s Submission) Key() string {
	return fmt.Sprintf("%s/%d/%s", s.EventID, s.MatchNumber, s.TeamID)
}
