package job

import (
	"errors"
	"fmt"
)

// Job errors.
var (
	// ErrUnknownTask is returned when attempting to enqueue or execute a task
	// that has not been registered.
	ErrUnknownTask = errors.New("job: unknown task")

	// ErrInvalidPayload is returned when a task payload cannot be
	// unmarshaled into the expected type or fails validation.
	ErrInvalidPayload = errors.New("job: invalid payload")

	// ErrPermanent marks a task failure that retrying cannot fix.
	// Such jobs are cancelled instead of retried.
	ErrPermanent = errors.New("job: permanent failure")

	// ErrAlreadyStarted is returned when attempting to start a manager
	// that is already running.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when attempting to stop a manager
	// that is not running.
	ErrNotStarted = errors.New("job: not started")

	// ErrPoolRequired is returned when attempting to create a manager
	// or enqueuer without providing a database pool.
	ErrPoolRequired = errors.New("job: pool is required")
)

// Permanent wraps err so the worker cancels the job instead of retrying it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// retryable reports whether a failed job should be attempted again.
func retryable(err error) bool {
	return !errors.Is(err, ErrPermanent) && !errors.Is(err, ErrInvalidPayload) && !errors.Is(err, ErrUnknownTask)
}
