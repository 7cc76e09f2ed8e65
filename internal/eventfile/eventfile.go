// Package eventfile reads scouting event files and single-match score files.
//
// An event file carries the event metadata, its roster and the scouted
// submissions:
//
//	event:
//	  id: usmn-qual-1
//	  name: Minnesota Qualifier
//	  thresholds: {movement: 16, goal: 36, pattern: 18}
//	teams: ["11111", "22222"]
//	matches:
//	  - match: 1
//	    alliance: red
//	    team: "11111"
//	    auton: {classified: 2, leave: true}
//	    teleop: {classified: 10, depot: 1}
//	    endgame: Full Base
//	    win: true
//
// Unknown keys are rejected so typos surface instead of scoring as zero.
package eventfile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aarondl/opt/omit"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/okian/scoutrank/internal/domain/model"
)

// maxConcurrentLoads bounds how many files LoadAll reads at once.
const maxConcurrentLoads = 8

// Bundle is everything one event file describes.
type Bundle struct {
	Source      string
	Event       model.Event
	Teams       []string
	Submissions []model.Submission
}

// ScoreRequest is a single match to score without any stored state.
type ScoreRequest struct {
	Self       model.MatchRecord
	Partner    omit.Val[model.PartnerRecord]
	Thresholds model.Thresholds
}

func decode(r io.Reader, out any) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty document", ErrInvalidFile)
		}
		return fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return nil
}

// Decode reads an event file. Thresholds the file leaves out are taken
// from defaults. Every submission is stamped with the event ID.
func Decode(r io.Reader, defaults model.Thresholds) (Bundle, error) {
	var doc eventDoc
	if err := decode(r, &doc); err != nil {
		return Bundle{}, err
	}

	b := Bundle{
		Event: model.Event{
			ID:         doc.Event.ID,
			Name:       doc.Event.Name,
			Thresholds: doc.Event.Thresholds.apply(defaults),
		},
		Teams: lo.Uniq(doc.Teams),
	}
	if err := model.Validate(b.Event); err != nil {
		return Bundle{}, fmt.Errorf("%w: event: %w", ErrInvalidFile, err)
	}

	b.Submissions = lo.Map(doc.Matches, func(m matchDoc, _ int) model.Submission {
		return model.Submission{
			ID:           m.ID,
			EventID:      b.Event.ID,
			MatchNumber:  m.Match,
			Alliance:     m.Alliance,
			TeamID:       m.Team,
			Record:       m.Record.model(),
			Disconnected: m.DC,
			Motif:        m.Motif,
			Synergy:      m.Synergy,
			Performance:  m.Performance,
			Notes:        m.Notes,
		}
	})
	return b, nil
}

// Load reads the event file at path.
func Load(path string, defaults model.Thresholds) (Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return Bundle{}, fmt.Errorf("open event file: %w", err)
	}
	defer f.Close()

	b, err := Decode(f, defaults)
	if err != nil {
		return Bundle{}, fmt.Errorf("%s: %w", path, err)
	}
	b.Source = path
	return b, nil
}

// LoadAll reads several event files concurrently. Results keep the order of
// paths; the first failure cancels the remaining loads.
func LoadAll(ctx context.Context, paths []string, defaults model.Thresholds) ([]Bundle, error) {
	out := make([]Bundle, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := Load(path, defaults)
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Encode writes b as an event file that Decode reads back unchanged.
func Encode(w io.Writer, b Bundle) error {
	var doc eventDoc
	doc.Event.ID = b.Event.ID
	doc.Event.Name = b.Event.Name
	doc.Event.Thresholds = thresholdsOf(b.Event.Thresholds)
	doc.Teams = b.Teams
	doc.Matches = lo.Map(b.Submissions, func(s model.Submission, _ int) matchDoc {
		return matchDoc{
			ID:          s.ID,
			Match:       s.MatchNumber,
			Alliance:    s.Alliance,
			Team:        s.TeamID,
			Record:      recordOf(s.Record),
			DC:          s.Disconnected,
			Motif:       s.Motif,
			Synergy:     s.Synergy,
			Performance: s.Performance,
			Notes:       s.Notes,
		}
	})

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode event %s: %w", b.Event.ID, err)
	}
	return enc.Close()
}

// DecodeScore reads a single-match score file:
//
//	self: {auton: {...}, teleop: {...}, endgame: Partial Base, win: true}
//	partner: {auton: {...}, teleop: {...}, endgame: None}
//	thresholds: {goal: 30}
//
// partner and thresholds are optional. The partner carries no win or tie.
func DecodeScore(r io.Reader, defaults model.Thresholds) (ScoreRequest, error) {
	var doc scoreDoc
	if err := decode(r, &doc); err != nil {
		return ScoreRequest{}, err
	}

	req := ScoreRequest{
		Self:       doc.Self.model(),
		Thresholds: doc.Thresholds.apply(defaults),
	}
	if err := model.Validate(req.Self); err != nil {
		return ScoreRequest{}, fmt.Errorf("%w: self: %w", ErrInvalidFile, err)
	}
	if err := model.Validate(req.Thresholds); err != nil {
		return ScoreRequest{}, fmt.Errorf("%w: thresholds: %w", ErrInvalidFile, err)
	}
	if doc.Partner != nil {
		p := doc.Partner.model()
		if err := model.Validate(p); err != nil {
			return ScoreRequest{}, fmt.Errorf("%w: partner: %w", ErrInvalidFile, err)
		}
		req.Partner = omit.From(p)
	}
	return req, nil
}

// LoadScore reads the score file at path.
func LoadScore(path string, defaults model.Thresholds) (ScoreRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return ScoreRequest{}, fmt.Errorf("open score file: %w", err)
	}
	defer f.Close()

	req, err := DecodeScore(f, defaults)
	if err != nil {
		return ScoreRequest{}, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}
