package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownValue is returned when text does not name a declared variant.
var ErrUnknownValue = errors.New("unknown enumeration value")

// enum is the underlying representation shared by all closed enumerations.
type enum interface{ ~uint8 }

// parse resolves s against names. An empty slot in names marks an index
// that can never be produced from text; allowEmpty maps blank input to
// the zero variant.
func parse[T enum](kind string, names []string, s string, allowEmpty bool) (T, error) {
	s = strings.TrimSpace(s)
	if s == "" && allowEmpty {
		return 0, nil
	}
	for i, n := range names {
		if n != "" && strings.EqualFold(n, s) {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("%s %q: %w", kind, s, ErrUnknownValue)
}

func name[T enum](names []string, v T) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("invalid(%d)", uint8(v))
}

// EndgameLocation is a robot's final position when the match ends.
type EndgameLocation uint8

const (
	EndgameNone EndgameLocation = iota
	EndgamePartialBase
	EndgameFullBase
)

var endgameNames = []string{"None", "Partial Base", "Full Base"}

// ParseEndgameLocation parses the scouting-form text of an endgame location.
// Blank input is treated as None, the form default.
func ParseEndgameLocation(s string) (EndgameLocation, error) {
	return parse[EndgameLocation]("endgame location", endgameNames, s, true)
}

func (e EndgameLocation) String() string { return name(endgameNames, e) }

// Valid reports whether e is a declared variant.
func (e EndgameLocation) Valid() bool { return int(e) < len(endgameNames) }

func (e EndgameLocation) MarshalText() ([]byte, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("endgame location %d: %w", uint8(e), ErrUnknownValue)
	}
	return []byte(e.String()), nil
}

func (e *EndgameLocation) UnmarshalText(b []byte) error {
	v, err := ParseEndgameLocation(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Alliance is the side a team played on. The zero value is not a valid
// alliance so that an unset field fails validation.
type Alliance uint8

const (
	AllianceRed Alliance = iota + 1
	AllianceBlue
)

var allianceNames = []string{"", "red", "blue"}

func ParseAlliance(s string) (Alliance, error) {
	return parse[Alliance]("alliance", allianceNames, s, false)
}

func (a Alliance) String() string {
	if a == 0 {
		return "unset"
	}
	return name(allianceNames, a)
}

func (a Alliance) Valid() bool { return a == AllianceRed || a == AllianceBlue }

func (a Alliance) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("alliance %d: %w", uint8(a), ErrUnknownValue)
	}
	return []byte(a.String()), nil
}

func (a *Alliance) UnmarshalText(b []byte) error {
	v, err := ParseAlliance(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Motif is the artifact colour sequence shown on the obelisk. Scouts may
// leave it blank.
type Motif uint8

const (
	MotifUnset Motif = iota
	MotifGPP
	MotifPGP
	MotifPPG
)

var motifNames = []string{"", "GPP", "PGP", "PPG"}

func ParseMotif(s string) (Motif, error) {
	return parse[Motif]("motif", motifNames, s, true)
}

func (m Motif) String() string { return name(motifNames, m) }

func (m Motif) Valid() bool { return int(m) < len(motifNames) }

func (m Motif) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("motif %d: %w", uint8(m), ErrUnknownValue)
	}
	return []byte(m.String()), nil
}

func (m *Motif) UnmarshalText(b []byte) error {
	v, err := ParseMotif(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Synergy is a scout's judgement of how well a team worked with its partner.
type Synergy uint8

const (
	SynergyUnset Synergy = iota
	SynergyGoodSynergyGoodTeam
	SynergyGoodTeam
	SynergyMidTeam
	SynergyBad
)

var synergyNames = []string{"", "Good Synergy and Good Team", "Good Team", "Mid Team", "Bad"}

func ParseSynergy(s string) (Synergy, error) {
	return parse[Synergy]("synergy", synergyNames, s, true)
}

func (s Synergy) String() string { return name(synergyNames, s) }

func (s Synergy) Valid() bool { return int(s) < len(synergyNames) }

func (s Synergy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("synergy %d: %w", uint8(s), ErrUnknownValue)
	}
	return []byte(s.String()), nil
}

func (s *Synergy) UnmarshalText(b []byte) error {
	v, err := ParseSynergy(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Performance is the scout's overall rating of a team's match.
type Performance uint8

const (
	PerformanceUnset Performance = iota
	PerformanceAmazing
	PerformanceMid
	PerformanceCooked
)

var performanceNames = []string{"", "Amazing", "Mid", "Cooked"}

func ParsePerformance(s string) (Performance, error) {
	return parse[Performance]("performance", performanceNames, s, true)
}

func (p Performance) String() string { return name(performanceNames, p) }

func (p Performance) Valid() bool { return int(p) < len(performanceNames) }

func (p Performance) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("performance %d: %w", uint8(p), ErrUnknownValue)
	}
	return []byte(p.String()), nil
}

func (p *Performance) UnmarshalText(b []byte) error {
	v, err := ParsePerformance(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
