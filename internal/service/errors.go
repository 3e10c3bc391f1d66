package service

import (
	"errors"
	"fmt"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
var (
	// ErrQuotaExhausted indicates the daily allowance for the requested action is used up.
	// API layer should map this to HTTP 429 Too Many Requests.
	ErrQuotaExhausted = domain.ErrQuotaExhausted

	// ErrGenerationDisabled indicates no AI generator is configured.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrGenerationDisabled = errors.New("ai generation is not configured")

	// ErrUpgradeUnavailable indicates no receipt verifier is configured.
	// API layer should map this to HTTP 503 Service Unavailable.
	ErrUpgradeUnavailable = errors.New("pro upgrade is not available")

	// ErrInvalidReceipt indicates a receipt that failed verification.
	// API layer should map this to HTTP 402 Payment Required.
	ErrInvalidReceipt = errors.New("receipt could not be verified")
)

// StudyServiceError wraps errors from the study service with context.
type StudyServiceError struct {
	// Operation is the operation that failed (e.g., "solve_image", "start_quiz")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for StudyServiceError.
func (e *StudyServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("study service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("study service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StudyServiceError) Unwrap() error {
	return e.Err
}

// NewStudyServiceError creates a new StudyServiceError.
// It returns known sentinel errors directly without wrapping.
func NewStudyServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		ErrQuotaExhausted,
		ErrGenerationDisabled,
		ErrUpgradeUnavailable,
		domain.ErrEmptyQuiz,
		domain.ErrNoActiveSession,
		domain.ErrSessionCompleted,
		domain.ErrQuestionOutOfRange,
		domain.ErrAnswerOutOfRange,
	} {
		if err == sentinel {
			return err
		}
	}

	return &StudyServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
