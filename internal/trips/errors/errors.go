package errors

import "errors"

var (
	ErrNotFound = errors.New("trip not found")

	ErrInvalidID = errors.New("invalid trip ID format")

	ErrOccurrenceNotFound = errors.New("occurrence not found")

	// ErrOccurrenceChanged means the occurrence no longer matched the state it
	// was read in when the write was attempted.
	ErrOccurrenceChanged = errors.New("occurrence was modified concurrently")

	ErrDateRequestNotFound = errors.New("date request not found")

	// ErrDuplicateDateRequest means the same person already asked for the
	// same trip on the same dates.
	ErrDuplicateDateRequest = errors.New("date request already exists")
)
