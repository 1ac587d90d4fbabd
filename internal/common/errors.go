// Package common defines shared constants and sentinel errors used across
// the server, the admin CLI and the HTTP layer. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal      = errors.New("internal error")
	ErrorUnauthorized  = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrOperationFailed = errors.New("operation failed")

	// Role editing.
	ErrEmptyRoleList = errors.New("user must have at least one role")
	ErrUnknownRole   = errors.New("unknown role")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Unit of work state errors.
	ErrAlreadyInTransaction = errors.New("already in transaction")
	ErrNotInTransaction     = errors.New("not in transaction")
)
