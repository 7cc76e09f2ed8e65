package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound       = errors.New("not found")
	ErrEventExists    = errors.New("event already exists")
	ErrTeamExists     = errors.New("team already registered")
	ErrDuplicateMatch = errors.New("match already recorded for team")
	ErrInvalidLimit   = errors.New("invalid standings limit")
	ErrUnknownColumn  = errors.New("unknown standings column")
	ErrInvalidUpdate  = errors.New("invalid statistics update")
)
