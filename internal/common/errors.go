// Package common defines shared constants and sentinel errors used across
// the gophauth server. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Credential errors. Unknown email and wrong secret both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Registration conflicts.
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrDuplicateDisplayName = errors.New("display name already exists")

	// Request validation.
	ErrValidation = errors.New("validation error")

	// Token errors (malformed, expired or badly signed).
	ErrInvalidToken = errors.New("invalid token")
	ErrNoAccountID  = errors.New("account has no id")

	// Refresh rotation errors.
	ErrAccountNotFound = errors.New("account not found")
	ErrTokenMismatch   = errors.New("refresh token mismatch")

	// Login throttling.
	ErrRateLimited = errors.New("rate limited")
)
