package repository

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	model "github.com/okian/scoutrank/internal/domain/model"
)

// Column names a sortable standings column.
type Column string

// Standings columns.
const (
	ColumnTeam          Column = "team"
	ColumnMatches       Column = "matches"
	ColumnAuton         Column = "auton"
	ColumnTeleop        Column = "teleop"
	ColumnEndgame       Column = "endgame"
	ColumnPatterns      Column = "patterns"
	ColumnDepot         Column = "depot"
	ColumnClassified    Column = "classified"
	ColumnOverflow      Column = "overflow"
	ColumnRankingPoints Column = "rp"
)

type compareFunc func(a, b *model.TeamStatistics) int

var columns = map[Column]compareFunc{
	ColumnTeam:          func(a, b *model.TeamStatistics) int { return cmp.Compare(a.TeamID, b.TeamID) },
	ColumnMatches:       func(a, b *model.TeamStatistics) int { return cmp.Compare(a.MatchesPlayed, b.MatchesPlayed) },
	ColumnAuton:         func(a, b *model.TeamStatistics) int { return cmp.Compare(a.AutonAverage, b.AutonAverage) },
	ColumnTeleop:        func(a, b *model.TeamStatistics) int { return cmp.Compare(a.TeleopAverage, b.TeleopAverage) },
	ColumnEndgame:       func(a, b *model.TeamStatistics) int { return cmp.Compare(a.EndgameAverage, b.EndgameAverage) },
	ColumnPatterns:      func(a, b *model.TeamStatistics) int { return cmp.Compare(a.PatternsAverage, b.PatternsAverage) },
	ColumnDepot:         func(a, b *model.TeamStatistics) int { return cmp.Compare(a.DepotAverage, b.DepotAverage) },
	ColumnClassified:    func(a, b *model.TeamStatistics) int { return cmp.Compare(a.ClassifiedAverage, b.ClassifiedAverage) },
	ColumnOverflow:      func(a, b *model.TeamStatistics) int { return cmp.Compare(a.OverflowAverage, b.OverflowAverage) },
	ColumnRankingPoints: func(a, b *model.TeamStatistics) int { return cmp.Compare(a.RankingPoints, b.RankingPoints) },
}

// ParseColumn resolves a column name. Blank input selects ranking points.
func ParseColumn(s string) (Column, error) {
	c := Column(strings.ToLower(strings.TrimSpace(s)))
	if c == "" {
		return ColumnRankingPoints, nil
	}
	if _, ok := columns[c]; !ok {
		return "", fmt.Errorf("%q: %w", s, ErrUnknownColumn)
	}
	return c, nil
}

// Columns returns every sortable column name.
func Columns() []Column {
	out := make([]Column, 0, len(columns))
	for c := range columns {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// order sorts ranked rows by q. Rows that compare equal keep their
// standings order.
func order(rows []Entry, q Query) error {
	col := q.SortBy
	if col == "" {
		col = ColumnRankingPoints
	}
	compare, ok := columns[col]
	if !ok {
		return fmt.Errorf("%q: %w", col, ErrUnknownColumn)
	}
	// Rows arrive in ranking-point order already.
	if col == ColumnRankingPoints && !q.Ascending {
		return nil
	}
	slices.SortStableFunc(rows, func(a, b Entry) int {
		c := compare(&a.Stats, &b.Stats)
		if q.Ascending {
			return c
		}
		return -c
	})
	return nil
}
