// Package common defines shared constants and sentinel errors used across
// the AuthKeeper server layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Classified service-level failures. The HTTP layer maps these to
	// transport status codes; everything else is treated as internal.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrorBadRequest    = errors.New("bad request")
	ErrorAlreadyExists = errors.New("already exists")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
