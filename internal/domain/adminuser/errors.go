package adminuser

import "errors"

var (
	// ErrNotFound is returned when no admin matches the lookup.
	ErrNotFound = errors.New("admin not found")
	// ErrDuplicate is returned when the username or email is already in
	// use by another admin.
	ErrDuplicate = errors.New("username or email already in use")
	// ErrInvalidCredentials is returned on failed login or a wrong
	// current password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSelfDelete is returned when an admin tries to delete their own
	// account.
	ErrSelfDelete = errors.New("cannot delete your own account")
	// ErrInvalid marks input validation failures.
	ErrInvalid = errors.New("invalid input")
)
