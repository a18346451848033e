package app

import "errors"

// ErrInvalidEventKind and related errors describe validation failures.
var (
	ErrInvalidEventKind = errors.New("invalid event kind")
)
