package worker

import "errors"

// Sentinel kinds for loop errors.
var (
	ErrStopped  = errors.New("loop stopped")
	ErrRejected = errors.New("loop queue rejected task")
)
