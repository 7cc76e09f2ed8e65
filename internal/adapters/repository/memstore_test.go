package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"

	model "github.com/okian/scoutrank/internal/domain/model"
	types "github.com/okian/scoutrank/internal/domain/types"
	"github.com/okian/scoutrank/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func newEventStore(t *testing.T, teams ...string) *MemoryStore {
	t.Helper()
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.CreateEvent(ctx, model.Event{ID: "ev1", Thresholds: model.DefaultThresholds()}); err != nil {
		t.Fatalf("create event: %v", err)
	}
	for _, id := range teams {
		if err := s.RegisterTeam(ctx, "ev1", id); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	return s
}

func submission(team string, match int, alliance types.Alliance) model.Submission {
	return model.Submission{EventID: "ev1", MatchNumber: match, Alliance: alliance, TeamID: team}
}

// record stores sub without changing any statistics and returns the
// partner the store paired it with.
func record(s *MemoryStore, sub model.Submission) (omit.Val[model.Submission], error) {
	var seen omit.Val[model.Submission]
	err := s.RecordMatch(context.Background(), sub, func(partner omit.Val[model.Submission], prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
		seen = partner
		return prior, nil
	})
	return seen, err
}

func addRP(t *testing.T, s *MemoryStore, team string, rp int) {
	t.Helper()
	err := s.Update(context.Background(), "ev1", []string{team}, func(prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
		next := prior[0]
		next.RankingPoints += rp
		next.MatchesPlayed++
		return []model.TeamStatistics{next}, nil
	})
	if err != nil {
		t.Fatalf("update %s: %v", team, err)
	}
}

func TestMemoryStore_Events(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "100", "200")

	ev, err := s.Event(ctx, "ev1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Thresholds != model.DefaultThresholds() {
		t.Errorf("expected default thresholds, got %+v", ev.Thresholds)
	}

	if err := s.CreateEvent(ctx, model.Event{ID: "ev1"}); !errors.Is(err, ErrEventExists) {
		t.Errorf("expected ErrEventExists, got %v", err)
	}
	if _, err := s.Event(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.RegisterTeam(ctx, "ev1", "100"); !errors.Is(err, ErrTeamExists) {
		t.Errorf("expected ErrTeamExists, got %v", err)
	}
	if err := s.RegisterTeam(ctx, "nope", "100"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if n := s.Count(ctx, "ev1"); n != 2 {
		t.Errorf("expected 2 teams, got %d", n)
	}
	if n := s.Count(ctx, "nope"); n != 0 {
		t.Errorf("expected 0 teams for unknown event, got %d", n)
	}
}

func TestMemoryStore_StatsAreZeroedOnRegistration(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "100")

	st, err := s.Stats(ctx, "ev1", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != model.NewTeamStatistics("ev1", "100") {
		t.Errorf("expected zeroed statistics, got %+v", st)
	}
	if _, err := s.Stats(ctx, "ev1", "999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_RecordMatchFindsPartner(t *testing.T) {
	s := newEventStore(t, "100", "200", "300", "400")

	first, err := record(s, submission("100", 1, types.AllianceRed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.IsValue() {
		t.Error("first submission on an alliance should have no partner")
	}

	if other, _ := record(s, submission("300", 1, types.AllianceBlue)); other.IsValue() {
		t.Error("opposing alliance must not be a partner")
	}
	if other, _ := record(s, submission("400", 2, types.AllianceRed)); other.IsValue() {
		t.Error("a different match must not be a partner")
	}

	second, err := record(s, submission("200", 1, types.AllianceRed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mate, ok := second.Get()
	if !ok || mate.TeamID != "100" {
		t.Errorf("expected partner 100, got %+v (set=%v)", mate, ok)
	}
}

func TestMemoryStore_RecordMatchPassesBothTeams(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "100", "200")
	if _, err := record(s, submission("100", 1, types.AllianceRed)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var teams []string
	err := s.RecordMatch(ctx, submission("200", 1, types.AllianceRed), func(_ omit.Val[model.Submission], prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
		next := make([]model.TeamStatistics, len(prior))
		for i, p := range prior {
			teams = append(teams, p.TeamID)
			p.RankingPoints = 4
			next[i] = p
		}
		return next, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(teams) != 2 || teams[0] != "200" || teams[1] != "100" {
		t.Errorf("expected submitter then partner, got %v", teams)
	}
	for _, id := range []string{"100", "200"} {
		if st, _ := s.Stats(ctx, "ev1", id); st.RankingPoints != 4 {
			t.Errorf("team %s: expected 4 RP, got %d", id, st.RankingPoints)
		}
	}
}

func TestMemoryStore_RecordMatchRejects(t *testing.T) {
	s := newEventStore(t, "100")

	if _, err := record(s, submission("100", 1, types.AllianceRed)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := record(s, submission("100", 1, types.AllianceBlue)); !errors.Is(err, ErrDuplicateMatch) {
		t.Errorf("expected ErrDuplicateMatch, got %v", err)
	}
	if _, err := record(s, submission("999", 1, types.AllianceRed)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unregistered team, got %v", err)
	}
	if _, err := record(s, model.Submission{EventID: "nope", MatchNumber: 1, TeamID: "100"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown event, got %v", err)
	}
}

func TestMemoryStore_RecordMatchRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "100", "200")

	boom := errors.New("boom")
	err := s.RecordMatch(ctx, submission("100", 1, types.AllianceRed), func(_ omit.Val[model.Submission], _ []model.TeamStatistics) ([]model.TeamStatistics, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = s.RecordMatch(cancelled, submission("100", 1, types.AllianceRed), func(_ omit.Val[model.Submission], prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
		return prior, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// Neither failure may pair with the partner or block a retry.
	mate, err := record(s, submission("200", 1, types.AllianceRed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mate.IsValue() {
		t.Error("a match that was never folded must not be a partner")
	}
	mate, err = record(s, submission("100", 1, types.AllianceRed))
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if m, ok := mate.Get(); !ok || m.TeamID != "200" {
		t.Errorf("expected partner 200 on retry, got %+v (set=%v)", m, ok)
	}
}

func TestMemoryStore_RecordMatchSerializesAlliance(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "100", "200")

	holding := make(chan struct{})
	resume := make(chan struct{})
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- s.RecordMatch(ctx, submission("100", 1, types.AllianceRed), func(_ omit.Val[model.Submission], prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
			close(holding)
			<-resume
			return prior, nil
		})
	}()
	<-holding

	secondDone := make(chan struct{})
	var mate omit.Val[model.Submission]
	var secondErr error
	go func() {
		defer close(secondDone)
		mate, secondErr = record(s, submission("200", 1, types.AllianceRed))
	}()

	select {
	case <-secondDone:
		t.Fatal("partner must wait while the first match on the alliance is folding")
	case <-time.After(50 * time.Millisecond):
	}
	close(resume)

	if err := <-firstDone; err != nil {
		t.Fatalf("first: %v", err)
	}
	<-secondDone
	if secondErr != nil {
		t.Fatalf("second: %v", secondErr)
	}
	if m, ok := mate.Get(); !ok || m.TeamID != "100" {
		t.Errorf("expected partner 100, got %+v (set=%v)", m, ok)
	}
}

func TestMemoryStore_ConcurrentPartnersSeeEachOtherOnce(t *testing.T) {
	for round := 0; round < 50; round++ {
		s := newEventStore(t, "100", "200")
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			seen int
		)
		for _, team := range []string{"100", "200"} {
			wg.Add(1)
			go func(team string) {
				defer wg.Done()
				mate, err := record(s, submission(team, 1, types.AllianceRed))
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if mate.IsValue() {
					mu.Lock()
					seen++
					mu.Unlock()
				}
			}(team)
		}
		wg.Wait()
		if seen != 1 {
			t.Fatalf("round %d: expected exactly one submission to see its partner, got %d", round, seen)
		}
	}
}

func TestMemoryStore_UpdateIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "100", "200")

	boom := errors.New("boom")
	err := s.Update(ctx, "ev1", []string{"100", "200"}, func(prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}

	err = s.Update(ctx, "ev1", []string{"100", "200"}, func(prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
		next := prior[0]
		next.RankingPoints = 5
		return []model.TeamStatistics{next}, nil
	})
	if !errors.Is(err, ErrInvalidUpdate) {
		t.Fatalf("expected ErrInvalidUpdate for short result, got %v", err)
	}

	err = s.Update(ctx, "ev1", []string{"100", "200"}, func(prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
		return []model.TeamStatistics{prior[1], prior[0]}, nil
	})
	if !errors.Is(err, ErrInvalidUpdate) {
		t.Fatalf("expected ErrInvalidUpdate for swapped rows, got %v", err)
	}

	for _, id := range []string{"100", "200"} {
		st, _ := s.Stats(ctx, "ev1", id)
		if st.RankingPoints != 0 {
			t.Errorf("team %s: failed updates must not commit, got %d RP", id, st.RankingPoints)
		}
	}

	if err := s.Update(ctx, "ev1", []string{"100", "999"}, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown team, got %v", err)
	}
	if err := s.Update(ctx, "ev1", []string{"100", "100"}, nil); !errors.Is(err, ErrInvalidUpdate) {
		t.Errorf("expected ErrInvalidUpdate for repeated team, got %v", err)
	}
}

func TestMemoryStore_UpdateSerializesPerTeam(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "100", "200", "300")

	const perTeam = 200
	var wg sync.WaitGroup
	pairs := [][]string{{"100", "200"}, {"200", "300"}, {"300", "100"}}
	for _, pair := range pairs {
		wg.Add(1)
		go func(pair []string) {
			defer wg.Done()
			for i := 0; i < perTeam; i++ {
				err := s.Update(ctx, "ev1", pair, func(prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
					out := make([]model.TeamStatistics, len(prior))
					for j, p := range prior {
						p.RankingPoints++
						out[j] = p
					}
					return out, nil
				})
				if err != nil {
					t.Errorf("update: %v", err)
					return
				}
			}
		}(pair)
	}
	wg.Wait()

	for _, id := range []string{"100", "200", "300"} {
		st, _ := s.Stats(ctx, "ev1", id)
		if st.RankingPoints != 2*perTeam {
			t.Errorf("team %s: expected %d RP, got %d (lost update)", id, 2*perTeam, st.RankingPoints)
		}
	}
}

func TestMemoryStore_StandingsAndRank(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "100", "200", "300", "400")
	addRP(t, s, "300", 7)
	addRP(t, s, "200", 7)
	addRP(t, s, "100", 3)

	rows, err := s.Standings(ctx, "ev1", Query{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantOrder := []string{"200", "300", "100", "400"}
	wantRank := []int{1, 1, 2, 3}
	for i, r := range rows {
		if r.Stats.TeamID != wantOrder[i] || r.Rank != wantRank[i] {
			t.Errorf("row %d: expected %s rank %d, got %s rank %d",
				i, wantOrder[i], wantRank[i], r.Stats.TeamID, r.Rank)
		}
	}

	entry, err := s.Rank(ctx, "ev1", "100")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Rank != 2 || entry.Stats.RankingPoints != 3 {
		t.Errorf("expected rank 2 with 3 RP, got %+v", entry)
	}
	if _, err := s.Rank(ctx, "ev1", "999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	limited, err := s.Standings(ctx, "ev1", Query{Limit: 2})
	if err != nil || len(limited) != 2 {
		t.Fatalf("expected 2 rows, got %d (%v)", len(limited), err)
	}
	if _, err := s.Standings(ctx, "ev1", Query{Limit: -1}); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := s.Standings(ctx, "ev1", Query{SortBy: "speed"}); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func TestMemoryStore_StandingsSortByColumn(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "100", "200", "300")
	averages := map[string]float64{"100": 12.5, "200": 30, "300": 4}
	for id, avg := range averages {
		err := s.Update(ctx, "ev1", []string{id}, func(prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
			next := prior[0]
			next.TeleopAverage = avg
			next.MatchesPlayed = 1
			return []model.TeamStatistics{next}, nil
		})
		if err != nil {
			t.Fatalf("update: %v", err)
		}
	}

	desc, err := s.Standings(ctx, "ev1", Query{SortBy: ColumnTeleop})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	asc, err := s.Standings(ctx, "ev1", Query{SortBy: ColumnTeleop, Ascending: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := func(rows []Entry) string {
		out := ""
		for _, r := range rows {
			out += r.Stats.TeamID + " "
		}
		return out
	}
	if g := got(desc); g != "200 100 300 " {
		t.Errorf("descending teleop order: got %q", g)
	}
	if g := got(asc); g != "300 100 200 " {
		t.Errorf("ascending teleop order: got %q", g)
	}
	for _, r := range desc {
		if r.Rank != 1 {
			t.Errorf("equal RP must share rank 1, team %s got %d", r.Stats.TeamID, r.Rank)
		}
	}
}

func TestParseColumn(t *testing.T) {
	for _, c := range Columns() {
		got, err := ParseColumn(string(c))
		if err != nil || got != c {
			t.Errorf("ParseColumn(%q) = %q, %v", c, got, err)
		}
	}
	if c, err := ParseColumn(" "); err != nil || c != ColumnRankingPoints {
		t.Errorf("blank column should select rp, got %q, %v", c, err)
	}
	if _, err := ParseColumn("RP"); err != nil {
		t.Errorf("column names are case-insensitive: %v", err)
	}
	if _, err := ParseColumn("speed"); !errors.Is(err, ErrUnknownColumn) {
		t.Errorf("expected ErrUnknownColumn, got %v", err)
	}
}

func BenchmarkMemoryStore_Update(b *testing.B) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.CreateEvent(ctx, model.Event{ID: "ev1"})
	teams := make([]string, 64)
	for i := range teams {
		teams[i] = fmt.Sprintf("%d", 1000+i)
		_ = s.RegisterTeam(ctx, "ev1", teams[i])
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			team := teams[i%len(teams)]
			_ = s.Update(ctx, "ev1", []string{team}, func(prior []model.TeamStatistics) ([]model.TeamStatistics, error) {
				next := prior[0]
				next.RankingPoints++
				return []model.TeamStatistics{next}, nil
			})
			i++
		}
	})
}
