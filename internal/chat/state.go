package chat

import (
	"errors"
	"fmt"

	"github.com/neboloop/runbook/internal/db"
)

// ErrSubmissionInFlight is returned when a submission is already running for
// the session.
var ErrSubmissionInFlight = errors.New("a submission is already in progress")

// ValidationError rejects a submission before anything is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceError wraps a failure to store a finished interaction.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save interaction: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Phase is the lifecycle stage of the current submission.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseGuarding
	PhaseAwaitingCompletion
	PhaseStreaming
	PhasePersisting
)

func (p Phase) String() string {
	switch p {
	case PhaseValidating:
		return "validating"
	case PhaseGuarding:
		return "guarding"
	case PhaseAwaitingCompletion:
		return "awaiting_completion"
	case PhaseStreaming:
		return "streaming"
	case PhasePersisting:
		return "persisting"
	}
	return "idle"
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Notification levels
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification is a user-visible message.
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// EventType names a session event.
type EventType string

const (
	EventLoading            EventType = "loading"
	EventInteractionStarted EventType = "interaction_started"
	EventFragment           EventType = "fragment"
	EventScroll             EventType = "scroll"
	EventNotification       EventType = "notification"
	EventPersisted          EventType = "persisted"
	EventRunbookChanged     EventType = "runbook_changed"
	EventPrompt             EventType = "prompt"
)

// Event is pushed to session subscribers.
type Event struct {
	Type         EventType           `json:"type"`
	Loading      bool                `json:"loading,omitempty"`
	Text         string              `json:"text,omitempty"`
	RunbookID    int64               `json:"runbook_id,omitempty"`
	Interaction  *db.ChatInteraction `json:"interaction,omitempty"`
	Notification *Notification       `json:"notification,omitempty"`
}

// State is a point-in-time copy of a session.
type State struct {
	Username     string               `json:"username"`
	Prompt       string               `json:"prompt"`
	RunbookID    int64                `json:"runbook_id"`
	Runbooks     []db.Runbook         `json:"runbooks"`
	Interactions []db.ChatInteraction `json:"interactions"`
	Loading      bool                 `json:"loading"`
	Phase        Phase                `json:"phase"`
	Notification *Notification        `json:"notification,omitempty"`
}

// Result describes how a submission ended.
type Result struct {
	Verdict     Verdict             `json:"verdict"`
	Interaction *db.ChatInteraction `json:"interaction,omitempty"`
}
