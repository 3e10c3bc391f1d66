package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidXPAmount is returned when an XP increment is negative.
	ErrInvalidXPAmount = errors.New("xp amount must be non-negative")

	// ErrEmptyQuiz is returned when a quiz is started without questions.
	ErrEmptyQuiz = errors.New("quiz must contain at least one question")

	// ErrNoActiveSession is returned when a session operation is issued
	// while no quiz session exists.
	ErrNoActiveSession = errors.New("no active quiz session")

	// ErrSessionCompleted is returned when an in-progress operation is issued
	// against a session that has already been completed.
	ErrSessionCompleted = errors.New("quiz session already completed")

	// ErrQuestionOutOfRange is returned when a question index does not
	// resolve to a question of the current session.
	ErrQuestionOutOfRange = errors.New("question index out of range")

	// ErrAnswerOutOfRange is returned when an answer index does not resolve
	// to one of the question's options.
	ErrAnswerOutOfRange = errors.New("answer index out of range")

	// ErrQuotaExhausted is returned by callers of a quota-gated action whose
	// daily allowance has been used up.
	ErrQuotaExhausted = errors.New("daily quota exhausted")
)

// ValidationError describes a single field that failed validation.
// It unwraps to its cause so callers can match on ErrValidation or on a more
// specific sentinel.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field. A nil err defaults
// to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Message)
	}
	return fmt.Sprintf("%s: %s %s", e.Err, e.Field, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports ErrValidation for every ValidationError so that
// errors.Is(err, ErrValidation) holds regardless of the specific cause.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
