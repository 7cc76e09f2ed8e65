package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/scoutrank/internal/eventfile"
	"github.com/okian/scoutrank/internal/simulate"
)

func newGenerateCmd(c *cli) *cobra.Command {
	sim := simulate.DefaultConfig()
	var output string
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic event file with a random qualification schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := simulate.Generate(cmd.Context(), sim, c.cfg.Thresholds())
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}
			return eventfile.Encode(out, b)
		},
	}

	cmd.Flags().StringVar(&sim.EventID, "event-id", sim.EventID, "event identifier")
	cmd.Flags().StringVar(&sim.Name, "name", sim.Name, "event display name")
	cmd.Flags().IntVar(&sim.Teams, "teams", sim.Teams, "roster size")
	cmd.Flags().IntVar(&sim.Matches, "matches", sim.Matches, "number of qualification matches")
	cmd.Flags().Uint64Var(&sim.Seed, "seed", sim.Seed, "random seed")
	cmd.Flags().IntVar(&sim.FirstTeam, "first-team", sim.FirstTeam, "number of the first team")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
