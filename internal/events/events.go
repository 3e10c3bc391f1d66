package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the progress and quiz stores.
const (
	TypeLevelUp       = "progress.level_up"
	TypeStreakUpdated = "progress.streak_updated"
	TypeProUpgraded   = "progress.pro_upgraded"
	TypeQuizCompleted = "quiz.completed"
)

// Event is a notification about a state change.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type is one of the Type* constants
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// OccurredAt is the clock time of the change that produced the event
	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent creates an Event with the specified type and payload.
func NewEvent(eventType string, payload interface{}, occurredAt time.Time) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:         uuid.New(),
		Type:       eventType,
		Payload:    payloadBytes,
		OccurredAt: occurredAt,
	}, nil
}

// LevelUpPayload accompanies TypeLevelUp.
type LevelUpPayload struct {
	UserID    string `json:"userId"`
	FromLevel int    `json:"fromLevel"`
	ToLevel   int    `json:"toLevel"`
	XP        int    `json:"xp"`
}

// StreakUpdatedPayload accompanies TypeStreakUpdated.
type StreakUpdatedPayload struct {
	UserID string `json:"userId"`
	Streak int    `json:"streak"`
	Day    string `json:"day"`
}

// ProUpgradedPayload accompanies TypeProUpgraded.
type ProUpgradedPayload struct {
	UserID string `json:"userId"`
}

// QuizCompletedPayload accompanies TypeQuizCompleted.
type QuizCompletedPayload struct {
	SessionID string `json:"sessionId"`
	Subject   string `json:"subject"`
	Score     int    `json:"score"`
	Correct   int    `json:"correct"`
	Total     int    `json:"total"`
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *Event) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows stores to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *Event) error
}

// Emit builds an event and hands it to emitter. A nil emitter is a no-op.
func Emit(ctx context.Context, emitter EventEmitter, eventType string, payload interface{}, occurredAt time.Time) error {
	if emitter == nil {
		return nil
	}
	event, err := NewEvent(eventType, payload, occurredAt)
	if err != nil {
		return err
	}
	return emitter.EmitEvent(ctx, event)
}
