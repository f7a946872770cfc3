package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")

	// ErrMalformedAlignment marks a sentence pair whose alignment vector does
	// not fit its token sequences. It fails that sentence pair only.
	ErrMalformedAlignment = errors.New("malformed alignment")

	// ErrDegenerateNormalization marks a target phrase that reached
	// normalization with a zero (or non-finite) total count.
	ErrDegenerateNormalization = errors.New("degenerate normalization")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// AlignmentError describes why an alignment vector was rejected.
// Position is the offending source index, or -1 for a length mismatch.
type AlignmentError struct {
	Position int
	Reason   string
}

func (e *AlignmentError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("malformed alignment: %s", e.Reason)
	}
	return fmt.Sprintf("malformed alignment at source %d: %s", e.Position, e.Reason)
}

func (e *AlignmentError) Unwrap() error { return ErrMalformedAlignment }
