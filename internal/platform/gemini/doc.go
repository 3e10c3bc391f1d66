// Package gemini provides an implementation of the generation.Generator interface
// that uses Google's Gemini API for quiz generation, photo solving and similar
// practice problems.
//
// This package is an infrastructure adapter, connecting the application's
// study flows to Google's external Gemini AI service without exposing the
// details of that service to the rest of the application.
//
// Key components:
//
// 1. Generator:
//   - Implements the generation.Generator interface
//   - Handles communication with the Gemini API
//
// 2. Prompt Management:
//   - Embeds one text/template prompt per operation
//   - Requests JSON output from the model
//
// 3. Response Processing:
//   - Extracts the candidate text and hands it to the generation decoders,
//     which validate it against the domain invariants
//
// 4. Error Handling:
//   - Retries transient failures with exponential backoff and jitter
//   - Maps safety blocks to generation.ErrContentBlocked and malformed
//     output to generation.ErrInvalidResponse, neither of which is retried
package gemini
