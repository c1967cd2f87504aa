package service

import "errors"

// Sentinel errors returned by the Service.
var (
	ErrUnknownSession  = errors.New("unknown session")
	ErrTooManySessions = errors.New("too many sessions")
	ErrNoView          = errors.New("no view entered")
	ErrNotStarted      = errors.New("service not started")
)
