package services

import "errors"

// Service error taxonomy. Handlers map these onto HTTP status codes
// (404, 409, 400, 503).
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyMember      = errors.New("already a member")
	ErrInvalidInput       = errors.New("invalid input")
	ErrBackendUnavailable = errors.New("backend unavailable")
)
