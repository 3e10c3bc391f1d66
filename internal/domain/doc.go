// Package domain contains the core entities of the SnapSolve progress engine:
// the user profile with its XP, streak and quota counters, quiz questions and
// sessions, and the solution payloads returned by the AI collaborator.
//
// Types here carry their own invariants (level derived from XP, exactly four
// options per question, answers aligned with questions) and expose validation
// helpers, but hold no persistence or concurrency concerns. Those live in the
// progress and quiz stores.
package domain
