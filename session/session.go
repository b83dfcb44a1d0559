// Package session holds conversation state for the controller: the
// Conversation Context threaded into every kernel turn, and the Message Log
// kept alongside it across resets.
package session

import (
	"time"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
)

// Session is a Conversation Context: the ordered messages the model sees on
// every turn. The controller replaces a Session on reset instead of clearing
// it. Implementations must be safe for concurrent use.
type Session interface {
	ID() string
	// Started reports when the Context was created.
	Started() time.Time
	// Seeded is the number of leading messages carried over from the
	// previous Context.
	Seeded() int
	AddMessage(msg protocol.Message)
	// Messages returns a copy of the conversation.
	Messages() []protocol.Message
}
