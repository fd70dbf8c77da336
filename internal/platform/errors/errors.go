package apperrors

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrNoActiveSession = errors.New("no active session")
	ErrAlreadyRunning  = errors.New("timer already running for another topic")
	ErrNotSignedIn     = errors.New("not signed in")
	ErrNotConfigured   = errors.New("not configured")
	ErrUnknownFunction = errors.New("unknown function")
	ErrRateLimited     = errors.New("rate limited")
)
