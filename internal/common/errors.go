// Package common defines shared constants and sentinel errors used across
// the server, the HTTP layer and the CLI client. Callers should use errors.Is
// to match these values; services wrap them with a human-readable message
// via fmt.Errorf("%w: ...").
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound     = errors.New("not found")
	ErrInvalidID      = errors.New("invalid id")
	ErrDuplicateEmail = errors.New("email already registered")

	// Service-level errors.
	ErrorInternal       = errors.New("internal error")
	ErrValidation       = errors.New("validation error")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrUnsupportedMedia = errors.New("unsupported media")
	ErrStoreTimeout     = errors.New("store timeout")

	// Auth errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthRequired       = errors.New("authentication required")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrMissingSecret      = errors.New("token signing secret is not configured")
)
