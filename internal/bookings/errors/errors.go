package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrReferenceNotFound = errors.New("no booking holds this payment reference")

	// ErrNotPayable marks a booking that was cancelled or paid while a
	// payment session was being opened for it.
	ErrNotPayable = errors.New("booking is no longer payable")
)
