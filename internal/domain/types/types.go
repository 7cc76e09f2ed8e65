// Package types contains common types used across the application
package types

// Entry represents one row of an event's team standings table.
type Entry struct {
	Rank              int     `json:"rank"`
	TeamID            string  `json:"team_id"`
	MatchesPlayed     int     `json:"matches_played"`
	AutonAverage      float64 `json:"auton_average"`
	TeleopAverage     float64 `json:"teleop_average"`
	EndgameAverage    float64 `json:"endgame_average"`
	PatternsAverage   float64 `json:"patterns_average"`
	DepotAverage      float64 `json:"depot_average"`
	ClassifiedAverage float64 `json:"classified_average"`
	OverflowAverage   float64 `json:"overflow_average"`
	RankingPoints     int     `json:"ranking_points"`
	RPUpdated         bool    `json:"rp_updated"`
}
