// Package quiz owns the quiz session lifecycle and the history of completed
// sessions.
//
// The store moves between three states: Idle (no current session),
// InProgress and Completed. A completed session stays current until it is
// cleared, and is recorded at the front of the history when it completes.
package quiz
