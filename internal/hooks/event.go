package hooks

import (
	"fmt"
	"time"

	"github.com/fyrsmithlabs/outguard/internal/scan"
)

// Event types and actions emitted by the host.
const (
	TypeMessage = "message"
	ActionSent  = "sent"

	// KeyMessageSent is the registration key for delivered messages.
	KeyMessageSent = TypeMessage + ":" + ActionSent
)

// Event is a host lifecycle event.
//
// Messages is the outbox: lines appended by handlers are shown to the user
// in the conversation the event belongs to.
type Event struct {
	Type       string         `json:"type"`
	Action     string         `json:"action"`
	SessionKey string         `json:"sessionKey"`
	Context    map[string]any `json:"context"`
	Timestamp  time.Time      `json:"timestamp"`
	Messages   []string       `json:"messages"`
}

// Key returns "type:action".
func (e *Event) Key() string {
	return e.Type + ":" + e.Action
}

// Text returns the message text from the event context.
func (e *Event) Text() string {
	return e.contextString("text")
}

// Channel returns the delivery channel, or "" when absent.
func (e *Event) Channel() string {
	return e.contextString("channel")
}

// Target returns the delivery target, or "" when absent.
func (e *Event) Target() string {
	return e.contextString("target")
}

// Input returns the event as scanner input.
func (e *Event) Input() scan.Input {
	return scan.Input{
		Text: e.Text(),
		Metadata: scan.Metadata{
			SessionID: e.SessionKey,
			Channel:   e.Channel(),
			Target:    e.Target(),
		},
	}
}

// Push appends a message to the outbox.
func (e *Event) Push(message string) {
	e.Messages = append(e.Messages, message)
}

func (e *Event) contextString(key string) string {
	v, ok := e.Context[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
