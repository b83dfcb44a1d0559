package session

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
)

type conversation struct {
	id      string
	started time.Time
	seeded  int

	mu       sync.RWMutex
	messages []protocol.Message
}

// NewMemorySession returns an in-memory Session seeded with messages. IDs are
// UUIDv7, so transcript keys sort by creation time.
func NewMemorySession(seed ...protocol.Message) Session {
	c := &conversation{
		id:       uuid.Must(uuid.NewV7()).String(),
		started:  time.Now(),
		seeded:   len(seed),
		messages: make([]protocol.Message, 0, len(seed)),
	}
	for _, msg := range seed {
		c.messages = append(c.messages, cloneMessage(msg))
	}
	return c
}

func (c *conversation) ID() string         { return c.id }
func (c *conversation) Started() time.Time { return c.started }
func (c *conversation) Seeded() int        { return c.seeded }

func (c *conversation) AddMessage(msg protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, cloneMessage(msg))
}

func (c *conversation) Messages() []protocol.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]protocol.Message, len(c.messages))
	for i, msg := range c.messages {
		out[i] = cloneMessage(msg)
	}
	return out
}

func cloneMessage(msg protocol.Message) protocol.Message {
	msg.ToolCalls = slices.Clone(msg.ToolCalls)
	return msg
}
