package model

// TeamStatistics is a team's accumulated record at one event.
type TeamStatistics struct {
	EventID           string
	TeamID            string
	MatchesPlayed     int
	AutonAverage      float64
	TeleopAverage     float64
	EndgameAverage    float64
	PatternsAverage   float64
	DepotAverage      float64
	ClassifiedAverage float64
	OverflowAverage   float64
	RankingPoints     int
	// RPUpdated reports whether the most recent ranking-point change was
	// computed with an alliance partner present.
	RPUpdated bool
}

// Contribution is one match's raw values for every averaged metric.
type Contribution struct {
	AutonPoints         int
	TeleopPoints        int
	EndgamePoints       int
	Patterns            int
	DepotArtifacts      int
	ClassifiedArtifacts int
	OverflowArtifacts   int
}

// NewTeamStatistics returns the zeroed row created when a team is
// registered to an event.
func NewTeamStatistics(eventID, teamID string) TeamStatistics {
	return TeamStatistics{EventID: eventID, TeamID: teamID}
}
