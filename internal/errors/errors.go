package errors

import (
	"errors"
	"fmt"
)

// Common error types for the token service
var (
	// Token errors
	ErrEmptyToken = errors.New("empty token")
	ErrNotFound   = errors.New("not found")

	// Client errors
	ErrInvalidClient = errors.New("invalid client")
	ErrInvalidScope  = errors.New("invalid scope")

	// Tenant errors
	ErrTenantNotFound = errors.New("tenant not found")

	// User errors
	ErrUserNotFound    = errors.New("user not found")
	ErrUserBlocked     = errors.New("user is blocked")
	ErrUserNotVerified = errors.New("user is not verified")

	// Storage errors
	ErrStoreNotConfigured = errors.New("store is not configured")
	ErrSigningKeyRequired = errors.New("signing key is required for jwt access tokens")
	ErrUnknownTokenFormat = errors.New("unknown access token format")
	ErrUnsupportedStore   = errors.New("unsupported store driver")
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
