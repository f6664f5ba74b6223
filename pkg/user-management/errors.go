package usermanagement

import (
	"errors"
	"fmt"
)

// Business rule failures. Every expected rejection is one of these values
// (or wraps one), so the API layer can map them to response codes without
// inspecting message strings.
var (
	ErrValidation         = errors.New("invalid input")
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrAlreadyVerified    = errors.New("user already verified")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSamePassword       = errors.New("new password cannot be the same as old password")
)

// AccountLockedError rejects a login while the account lock is active.
// RetryAfter carries the remaining lock time in seconds for the
// Retry-After header.
type AccountLockedError struct {
	RetryAfter int64
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked, try again in %d seconds", e.RetryAfter)
}
