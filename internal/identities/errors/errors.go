package errors

import "errors"

var (
	ErrNotFound = errors.New("identity not found")

	ErrInvalidID = errors.New("invalid identity ID format")
)
