package core

import "encoding/json"

// EventType tags the wire frame carrying an event.
type EventType string

const (
	// EventStatus carries lifecycle signals (connected, started, typing,
	// finished, stopped, error).
	EventStatus EventType = "status"
	// EventToken carries one incremental text fragment of an in-progress turn.
	EventToken EventType = "token"
	// EventMessage carries the finalized content of a completed turn.
	EventMessage EventType = "message"
	// EventError carries a user-safe failure description.
	EventError EventType = "error"
)

// Signal values carried by status events that are not lifecycle states.
const (
	SignalConnected = "connected"
	SignalStarted   = "started"
	SignalTyping    = "typing"
)

// Event is the unit of fan-out distribution. After emission it must be
// treated as immutable. Data holds one of StatusData, TokenData, MessageData
// or ErrorData depending on Type.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// StatusData is the body of a status event. Name and Turn are only set for
// typing signals.
type StatusData struct {
	Status string `json:"status"`
	Name   string `json:"name,omitempty"`
	Turn   int    `json:"turn,omitempty"`
}

// TokenData is the body of a token event.
type TokenData struct {
	Name  string `json:"name"`
	Turn  int    `json:"turn"`
	Token string `json:"token"`
	Role  Role   `json:"role"`
}

// MessageData is the body of a message event.
type MessageData struct {
	Name    string `json:"name"`
	Turn    int    `json:"turn"`
	Content string `json:"content"`
	Role    Role   `json:"role"`
	Model   string `json:"model"`
}

// ErrorData is the body of an error event. Message must always be safe to
// show to observers.
type ErrorData struct {
	Message string `json:"message"`
}

// NewStatusEvent creates a bare status event (connected, started, or a
// terminal lifecycle state).
func NewStatusEvent(status string) Event {
	return Event{Type: EventStatus, Data: StatusData{Status: status}}
}

// NewTypingEvent signals that a speaker has begun producing a turn.
func NewTypingEvent(name string, turn int) Event {
	return Event{Type: EventStatus, Data: StatusData{Status: SignalTyping, Name: name, Turn: turn}}
}

// NewTokenEvent creates an incremental fragment event for an in-progress turn.
func NewTokenEvent(name string, turn int, token string, role Role) Event {
	return Event{Type: EventToken, Data: TokenData{Name: name, Turn: turn, Token: token, Role: role}}
}

// NewMessageEvent creates a finalized-turn event.
func NewMessageEvent(name string, turn int, content string, role Role, model string) Event {
	return Event{Type: EventMessage, Data: MessageData{Name: name, Turn: turn, Content: content, Role: role, Model: model}}
}

// NewErrorEvent creates an error event. The message is shown to observers
// verbatim, so callers must only pass user-safe text.
func NewErrorEvent(message string) Event {
	return Event{Type: EventError, Data: ErrorData{Message: message}}
}

// MarshalData renders the event body as JSON. Transports frame the result
// alongside the event type.
func (e Event) MarshalData() ([]byte, error) { return json.Marshal(e.Data) }
