// Package service contains the application use cases of SnapSolve. It
// orchestrates the progress and quiz stores, the AI generator and receipt
// verification to implement the flows a client drives: photo solves,
// similar questions, quiz generation and play, and the pro upgrade.
//
// Services receive their collaborators through constructor injection and
// depend on interfaces, never on concrete infrastructure. Quota checks run
// before any generator call, and XP rewards are granted only after the
// corresponding activity succeeds.
//
// Error handling follows the same discipline throughout:
//   - expected conditions are returned as sentinel errors (ErrQuotaExhausted,
//     domain errors from the stores, generation errors from the generator)
//   - unexpected failures are wrapped in *StudyServiceError with the
//     operation that failed
//   - callers match with errors.Is/errors.As; the API layer maps them to
//     HTTP status codes
package service
