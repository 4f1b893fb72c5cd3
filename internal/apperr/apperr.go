// Package apperr defines the error taxonomy shared across the core:
// not-found and invalid-argument conditions that the HTTP layer maps to
// distinct 4xx responses. Everything else surfaces as a generic failure.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks an unknown learner, topic, or progress record.
	ErrNotFound = errors.New("not found")

	// ErrInvalid marks a caller contract violation, such as a zero-length
	// quiz total.
	ErrInvalid = errors.New("invalid argument")
)

// NotFoundf returns a formatted error wrapping ErrNotFound.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Invalidf returns a formatted error wrapping ErrInvalid.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalid reports whether err wraps ErrInvalid.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}
