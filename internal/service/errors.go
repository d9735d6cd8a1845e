package service

import "errors"

// Sentinel kinds for every failure a service can raise. Handlers map these to
// HTTP statuses; messages wrapped around them are safe to show a client.
var (
	ErrAlreadyExists   = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")

	// ErrAuthentication covers token cryptographic and structural problems,
	// distinct from bad credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrForbidden is raised on ownership violations, such as editing
	// another user's job posting.
	ErrForbidden = errors.New("forbidden")
)
