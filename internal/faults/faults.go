// Package faults defines the error kinds returned by the analysis core.
// Callers test for a kind with errors.Is.
package faults

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig marks a configuration value out of its allowed range
	// (block size, bin count, radius, threshold policy).
	ErrInvalidConfig = errors.New("invalid config")
	// ErrMalformedInput marks a pixel buffer that violates its invariants.
	ErrMalformedInput = errors.New("malformed input")
	// ErrCancelled marks an analysis abandoned because its context was done.
	ErrCancelled = errors.New("analysis cancelled")
)

func InvalidConfig(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func MalformedInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedInput, fmt.Sprintf(format, args...))
}

// Cancelled wraps the context error so both errors.Is(err, ErrCancelled)
// and errors.Is(err, context.DeadlineExceeded) hold.
func Cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
