package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/okian/scoutrank/internal/domain/ranking"
	"github.com/okian/scoutrank/internal/domain/scoring"
	"github.com/okian/scoutrank/internal/eventfile"
)

func newScoreCmd(c *cli) *cobra.Command {
	var matchFile string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a single match without any event state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := eventfile.LoadScore(matchFile, c.cfg.Thresholds())
			if err != nil {
				return err
			}
			return printScore(cmd.OutOrStdout(), req)
		},
	}
	cmd.Flags().StringVarP(&matchFile, "match", "m", "", "match file to score")
	_ = cmd.MarkFlagRequired("match")
	return cmd
}

func printScore(out io.Writer, req eventfile.ScoreRequest) error {
	b := scoring.Score(req.Self)
	res := ranking.Evaluate(req.Self, req.Partner, req.Thresholds)

	partner := "absent"
	if res.PartnerPresent {
		partner = "present"
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	rows := []struct {
		name  string
		value any
	}{
		{"auton", b.Auton},
		{"teleop", b.Teleop},
		{"endgame", b.Endgame},
		{"total", b.Total},
		{"partner", partner},
		{"movement_rp", res.MovementRP},
		{"goal_rp", res.GoalRP},
		{"pattern_rp", res.PatternRP},
		{"win_rp", res.WinRP},
		{"tie_rp", res.TieRP},
		{"total_rp", res.TotalRP},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%v\n", r.name, r.value)
	}
	return tw.Flush()
}
