package contact

import "errors"

var (
	// ErrNotFound is returned when no contact query matches the id.
	ErrNotFound = errors.New("contact query not found")
	// ErrInvalid marks input validation failures.
	ErrInvalid = errors.New("invalid input")
)
