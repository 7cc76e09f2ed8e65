package eventfile

import "errors"

// ErrInvalidFile is returned when a file cannot be decoded or describes an
// impossible event.
var ErrInvalidFile = errors.New("invalid event file")
