// Package generation defines the boundary between the study engine and the
// external AI (LLM) service used for content generation: quiz questions for a
// subject, worked solutions for a photographed problem, and similar practice
// problems.
//
// Implementations (see internal/platform/gemini) return raw model output;
// the decoders in this package turn it into domain values and validate it, so
// a malformed payload never reaches a store. Every decoding failure is
// ErrInvalidResponse wrapping a *domain.ValidationError.
package generation
