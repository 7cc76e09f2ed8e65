// Package config defines process configuration and its loading hooks.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/scoutrank/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// QueueSize bounds the in-memory submission queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxStandingsLimit caps the rows a standings query returns. Zero disables the cap.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	// Thresholds used for events whose file does not set its own.
	MovementThreshold int `koanf:"movement_threshold"`
	GoalThreshold     int `koanf:"goal_threshold"`
	PatternThreshold  int `koanf:"pattern_threshold"`
}

// New creates a Config with defaults.
func New() *Config {
	th := model.DefaultThresholds()
	return &Config{
		LogLevel:          "info",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        50_000,
		MaxStandingsLimit: 0,
		MovementThreshold: th.Movement,
		GoalThreshold:     th.Goal,
		PatternThreshold:  th.Pattern,
	}
}

// Thresholds returns the default ranking point thresholds.
func (c *Config) Thresholds() model.Thresholds {
	return model.Thresholds{
		Movement: c.MovementThreshold,
		Goal:     c.GoalThreshold,
		Pattern:  c.PatternThreshold,
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive, got %d", ErrInvalidConfig, c.QueueSize)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive, got %d", ErrInvalidConfig, c.WorkerCount)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.MaxStandingsLimit < 0:
		return fmt.Errorf("%w: max_standings_limit must not be negative, got %d", ErrInvalidConfig, c.MaxStandingsLimit)
	}
	if err := model.Validate(c.Thresholds()); err != nil {
		return fmt.Errorf("%w: thresholds: %w", ErrInvalidConfig, err)
	}
	return nil
}
