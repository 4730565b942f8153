package content

import "errors"

var (
	// ErrNotFound is returned when a content object does not exist.
	ErrNotFound = errors.New("content: object not found")

	// ErrInvalidID is returned for ids that are not positive integers.
	ErrInvalidID = errors.New("content: invalid object id")

	// ErrQueryFailed is returned when the backing store cannot be queried.
	ErrQueryFailed = errors.New("content: query failed")
)
