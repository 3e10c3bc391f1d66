package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/snapsolve/snapsolve/internal/api/shared"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/generation"
	"github.com/snapsolve/snapsolve/internal/service"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Quota errors
	case errors.Is(err, service.ErrQuotaExhausted):
		return http.StatusTooManyRequests

	// Entitlement errors
	case errors.Is(err, service.ErrInvalidReceipt):
		return http.StatusPaymentRequired

	// Generator errors. These are checked before validation errors because
	// an invalid AI payload wraps a domain validation error.
	case errors.Is(err, generation.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, generation.ErrContentBlocked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, service.ErrGenerationDisabled),
		errors.Is(err, service.ErrUpgradeUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	// Quiz state errors
	case errors.Is(err, domain.ErrNoActiveSession),
		errors.Is(err, domain.ErrSessionCompleted),
		errors.Is(err, domain.ErrQuestionOutOfRange),
		errors.Is(err, domain.ErrAnswerOutOfRange):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrEmptyQuiz),
		errors.Is(err, domain.ErrInvalidXPAmount):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, service.ErrQuotaExhausted):
		return "Daily limit reached. Upgrade to Pro for unlimited access!"

	case errors.Is(err, service.ErrInvalidReceipt):
		return "Purchase receipt could not be verified"

	case errors.Is(err, generation.ErrInvalidInput):
		return "The uploaded image could not be read"
	case errors.Is(err, generation.ErrContentBlocked):
		return "This content cannot be processed"
	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrGenerationFailed):
		return "The AI service returned an unusable response. Please try again."
	case errors.Is(err, generation.ErrTransientFailure):
		return "The AI service is temporarily unavailable. Please try again."
	case errors.Is(err, service.ErrGenerationDisabled):
		return "AI features are not configured"
	case errors.Is(err, service.ErrUpgradeUnavailable):
		return "Upgrades are not available"
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out"

	case errors.Is(err, domain.ErrNoActiveSession):
		return "No quiz in progress"
	case errors.Is(err, domain.ErrSessionCompleted):
		return "Quiz already completed"
	case errors.Is(err, domain.ErrQuestionOutOfRange):
		return "Question index out of range"
	case errors.Is(err, domain.ErrAnswerOutOfRange):
		return "Answer index out of range"

	case errors.Is(err, domain.ErrEmptyQuiz):
		return "Quiz must contain at least one question"
	case errors.Is(err, domain.ErrValidation):
		var ve *domain.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			return fmt.Sprintf("Invalid %s: %s", ve.Field, ve.Message)
		}
		return "Validation error"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a user-friendly message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gte", "gt":
		return "too small"
	case "max", "lte", "lt":
		return "too large"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid element"
	default:
		return "validation failed"
	}
}

// HandleAPIError maps err to a status and safe message and writes the error
// response. fallback replaces the generic message for internal errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if status == http.StatusPaymentRequired {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
