package dispatch

import "errors"

var (
	// ErrAlreadyRunning is returned by Start on a started worker pool.
	ErrAlreadyRunning = errors.New("dispatch: worker pool already started")

	// ErrNotRunning is returned by Stop and Enqueue on a stopped worker pool.
	ErrNotRunning = errors.New("dispatch: worker pool not running")

	// ErrQueueFull is returned by Enqueue when no queue slot is free.
	ErrQueueFull = errors.New("dispatch: queue full")
)
