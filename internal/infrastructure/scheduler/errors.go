package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned for a non-positive interval or a nil task
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrAlreadyRunning is returned by RunNow while a run is in progress
	ErrAlreadyRunning = errors.New("task is already running")
)
