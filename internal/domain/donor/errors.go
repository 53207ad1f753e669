package donor

import "errors"

var (
	// ErrNotFound is returned when no donor matches the lookup.
	ErrNotFound = errors.New("donor not found")
	// ErrEmailTaken is returned when registering with an email that
	// already has an account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned on failed login or password
	// change with a wrong current password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalid marks input validation failures. Wrap with fmt.Errorf
	// and %w so handlers can map the whole family to 400.
	ErrInvalid = errors.New("invalid input")
)
