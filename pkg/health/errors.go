package health

import "errors"

var (
	// ErrCheckFailed is returned by Run when one or more checks fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout wraps a check error caused by the shared timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)
