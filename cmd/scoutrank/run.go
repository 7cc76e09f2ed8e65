package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	repository "github.com/okian/scoutrank/internal/adapters/repository"
	service "github.com/okian/scoutrank/internal/app"
	"github.com/okian/scoutrank/internal/domain/model"
	"github.com/okian/scoutrank/internal/domain/types"
	"github.com/okian/scoutrank/internal/eventfile"
	"github.com/okian/scoutrank/internal/simulate"
	"github.com/okian/scoutrank/pkg/logger"
	"github.com/okian/scoutrank/pkg/metrics"
)

const (
	drainTimeout = 30 * time.Second
	retryDelay   = 5 * time.Millisecond
)

// errSubmissionsFailed is returned after the standings are printed when
// any accepted submission could not be processed.
var errSubmissionsFailed = errors.New("submissions failed processing")

type runOptions struct {
	events  []string
	sortBy  string
	asc     bool
	desc    bool
	limit   int
	metrics bool
	verify  bool
}

func newRunCmd(c *cli) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process event files and print team standings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.events, "event", "e", nil, "event file to process (repeatable)")
	cmd.Flags().StringVar(&opts.sortBy, "sort", "rp", "column to sort by")
	cmd.Flags().BoolVar(&opts.asc, "asc", false, "sort ascending")
	cmd.Flags().BoolVar(&opts.desc, "desc", false, "sort descending (default)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "maximum rows per event (0 for all)")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "print metrics after the standings")
	cmd.Flags().BoolVar(&opts.verify, "verify", false, "check ranking order of every event")
	cmd.MarkFlagsMutuallyExclusive("asc", "desc")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func (c *cli) run(ctx context.Context, out io.Writer, opts *runOptions) error {
	col, err := repository.ParseColumn(opts.sortBy)
	if err != nil {
		return err
	}
	q := repository.Query{SortBy: col, Ascending: opts.asc, Limit: opts.limit}
	log := logger.Named("run")

	bundles, err := eventfile.LoadAll(ctx, opts.events, c.cfg.Thresholds())
	if err != nil {
		return err
	}

	svc := service.New(
		service.WithWorkerCount(c.cfg.WorkerCount),
		service.WithQueueSize(c.cfg.QueueSize),
		service.WithDedupeSize(c.cfg.DedupeSize),
		service.WithMaxStandingsLimit(c.cfg.MaxStandingsLimit),
	)
	for _, b := range bundles {
		if err := svc.RegisterEvent(ctx, b.Event, b.Teams); err != nil {
			return fmt.Errorf("%s: %w", b.Source, err)
		}
	}
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	rejected := 0
	for _, b := range bundles {
		for _, sub := range b.Submissions {
			err := submit(ctx, svc, sub)
			switch {
			case err == nil:
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				rejected++
				log.Warn(ctx, "submission rejected",
					logger.String("file", b.Source),
					logger.String("key", sub.Key()),
					logger.Error(err),
				)
			}
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()
	if err := svc.Drain(drainCtx); err != nil {
		return err
	}
	st := svc.GetStats()
	failed, _ := st["failed"].(int64)
	log.Info(ctx, "events processed",
		logger.Int("events", len(bundles)),
		logger.Int("rejected", rejected),
		logger.Any("processed", st["processed"]),
		logger.Int("failed", int(failed)),
	)

	for i, b := range bundles {
		if i > 0 {
			fmt.Fprintln(out)
		}
		rows, err := svc.Standings(ctx, b.Event.ID, q)
		if err != nil {
			return err
		}
		if err := printStandings(out, b.Event.ID, b.Event.Name, rows); err != nil {
			return err
		}
		if opts.verify {
			if err := c.verify(ctx, svc, b.Event.ID); err != nil {
				return err
			}
		}
	}

	if opts.metrics {
		fmt.Fprintln(out)
		if err := metrics.WriteText(out); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d", errSubmissionsFailed, failed)
	}
	return nil
}

// submit retries while the queue is full.
func submit(ctx context.Context, svc *service.Service, sub model.Submission) error { //nolint:gocritic // hugeParam
	for {
		_, err := svc.Submit(ctx, sub)
		if !errors.Is(err, service.ErrBackpressure) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

func (c *cli) verify(ctx context.Context, svc *service.Service, eventID string) error {
	rows, err := svc.Standings(ctx, eventID, repository.Query{})
	if err != nil {
		return err
	}
	if err := simulate.VerifyStandings(rows); err != nil {
		return fmt.Errorf("event %s: %w", eventID, err)
	}
	logger.Named("run").Info(ctx, "standings verified", logger.String("event_id", eventID))
	return nil
}

func printStandings(out io.Writer, eventID, name string, rows []types.Entry) error {
	title := eventID
	if name != "" {
		title = name + " (" + eventID + ")"
	}
	fmt.Fprintln(out, title)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "RANK\tTEAM\tMATCHES\tAUTON\tTELEOP\tENDGAME\tPATTERNS\tDEPOT\tCLASSIFIED\tOVERFLOW\tRP\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t\n",
			r.Rank, r.TeamID, r.MatchesPlayed,
			r.AutonAverage, r.TeleopAverage, r.EndgameAverage,
			r.PatternsAverage, r.DepotAverage, r.ClassifiedAverage, r.OverflowAverage,
			r.RankingPoints)
	}
	return tw.Flush()
}
