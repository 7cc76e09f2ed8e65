package service

import "errors"

var (
	// ErrNotStarted is returned when submissions arrive before Start or after Stop.
	ErrNotStarted = errors.New("service not started")
	// ErrBackpressure is returned when the submission queue is full.
	ErrBackpressure = errors.New("submission queue full")
	// ErrDuplicate is returned when a team's submission for a match was already accepted.
	ErrDuplicate = errors.New("duplicate submission")
)
