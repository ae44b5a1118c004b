package errors

import (
	"errors"
	"fmt"
)

// Common error types for the admin console
var (
	// Credential errors
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrStorageUnavailable = errors.New("credential storage unavailable")
	ErrMissingTokens      = errors.New("missing tokens in response")

	// Session errors
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrSessionExpired = errors.New("session expired")
	ErrNotLoggedIn    = errors.New("not logged in")

	// API errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")

	// Validation errors
	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
