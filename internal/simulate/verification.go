package simulate

import (
	"errors"
	"fmt"

	"github.com/okian/scoutrank/internal/domain/types"
)

// ErrInconsistentStandings is returned when a standings table violates
// ranking order.
var ErrInconsistentStandings = errors.New("inconsistent standings")

// VerifyStandings checks a table sorted by ranking points: points never
// increase down the table, equal points share a rank, and ranks are dense.
func VerifyStandings(rows []types.Entry) error {
	if len(rows) == 0 {
		return fmt.Errorf("%w: empty table", ErrInconsistentStandings)
	}
	if rows[0].Rank != 1 {
		return fmt.Errorf("%w: top row %s has rank %d", ErrInconsistentStandings, rows[0].TeamID, rows[0].Rank)
	}

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1], rows[i]
		switch {
		case cur.RankingPoints > prev.RankingPoints:
			return fmt.Errorf("%w: row %d (%s, %d RP) is above row %d (%s, %d RP)",
				ErrInconsistentStandings, i-1, prev.TeamID, prev.RankingPoints, i, cur.TeamID, cur.RankingPoints)
		case cur.RankingPoints == prev.RankingPoints && cur.Rank != prev.Rank:
			return fmt.Errorf("%w: %s and %s tie on %d RP but rank %d and %d",
				ErrInconsistentStandings, prev.TeamID, cur.TeamID, cur.RankingPoints, prev.Rank, cur.Rank)
		case cur.RankingPoints < prev.RankingPoints && cur.Rank != prev.Rank+1:
			return fmt.Errorf("%w: %s follows rank %d with rank %d",
				ErrInconsistentStandings, cur.TeamID, prev.Rank, cur.Rank)
		}
	}
	return nil
}
