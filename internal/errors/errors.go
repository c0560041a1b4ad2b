// Package errors provides standardized domain errors that express business intent
// rather than infrastructure details. These errors should be used by use cases
// and mapped to appropriate HTTP status codes by handlers.
package errors

import (
	"errors"
	"fmt"
)

// Standard domain errors that can be used across all domain modules.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input data is invalid or fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConfig indicates the runtime configuration is incomplete or inconsistent.
	ErrConfig = errors.New("configuration error")

	// ErrClassification indicates the classification collaborator failed to
	// produce a usable result for a message.
	ErrClassification = errors.New("classification failed")

	// ErrAuthentication indicates the transport collaborator could not be
	// authenticated. Fatal in live mode.
	ErrAuthentication = errors.New("authentication failed")

	// ErrUnavailable indicates an external collaborator could not be reached
	// or returned an unusable response.
	ErrUnavailable = errors.New("collaborator unavailable")
)

// New creates a new error with the given message.
// This is a convenience wrapper around errors.New for consistency.
func New(message string) error {
	return errors.New(message)
}

// Wrap wraps an error with additional context while preserving the error chain.
// Use this to add context at each layer without losing the original error type.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
