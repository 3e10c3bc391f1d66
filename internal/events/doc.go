// Package events provides types and interfaces for progress notifications.
//
// Stores emit an Event after a notable state change (a level-up, a streak
// change, a completed quiz, a pro upgrade) without knowing who consumes it.
// Handlers are registered on an EventEmitter; the in-memory emitter fans each
// event out to every handler synchronously.
//
// The primary components are:
// - Event: a typed notification with a JSON payload
// - EventHandler: Interface for components that can handle events
// - EventEmitter: Interface for components that can emit events
package events
