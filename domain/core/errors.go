package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	ErrNotFound        = errors.New("resource not found")
	ErrSessionNotFound = fmt.Errorf("%w: session", ErrNotFound)

	// Validation errors
	ErrInvalidInput   = errors.New("invalid input")
	ErrEmptySelection = fmt.Errorf("%w: empty selection", ErrInvalidInput)
	ErrNoDateColumn   = errors.New("no date column detected")

	// Parsing errors
	ErrUnusableFile = errors.New("could not load data")
)

// NewEmptySelectionError names the missing selection so the UI can turn it
// into a guidance message.
func NewEmptySelectionError(what string) error {
	return fmt.Errorf("%w: %s", ErrEmptySelection, what)
}

// NewValidationError reports a failed input check on a named field.
func NewValidationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidInput, field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInvalidInputError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
