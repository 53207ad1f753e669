package request

import "errors"

var (
	// ErrNotFound is returned when no request matches the lookup.
	ErrNotFound = errors.New("donation request not found")
	// ErrNotOwner is returned when an actor other than the targeted donor
	// tries to accept or deny a request.
	ErrNotOwner = errors.New("request is addressed to a different donor")
	// ErrNotRequester is returned when an actor other than the original
	// requester tries to withdraw a request.
	ErrNotRequester = errors.New("request was created by a different account")
	// ErrNotPending is returned when withdrawing a request that has
	// already been accepted or denied.
	ErrNotPending = errors.New("request is no longer pending")
	// ErrInvalid marks input validation failures, including unknown
	// status values and past donation dates.
	ErrInvalid = errors.New("invalid input")
)
