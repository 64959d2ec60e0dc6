package service

import "errors"

// Domain errors returned by the services. Handlers map them to HTTP statuses;
// anything else is an internal failure.
var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("authorization required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
)
