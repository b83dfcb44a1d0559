// Package mock provides a scripted Agent for tests. Each Stream call
// consumes the next queued Turn and records the request it received.
package mock

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/core/response"
)

// ErrNoTurns is the stream error when Stream is called with an empty queue.
var ErrNoTurns = errors.New("mock agent has no scripted turns left")

// Turn scripts one model reply.
type Turn struct {
	// Text is streamed as one delta per element.
	Text []string
	// Calls are emitted after the text.
	Calls []protocol.ToolCall
	// Err fails the stream after Text and Calls were delivered.
	Err error
	// Block holds the stream open until its context is done.
	Block bool
}

// Reply is a Turn that streams text only.
func Reply(deltas ...string) Turn {
	return Turn{Text: deltas}
}

// CallTools is a Turn that requests the given calls.
func CallTools(calls ...protocol.ToolCall) Turn {
	return Turn{Calls: calls}
}

// Request is what the agent received for one Stream call.
type Request struct {
	Messages []protocol.Message
	Tools    []protocol.Tool
}

// MockAgent implements agent.Agent.
type MockAgent struct {
	id       string
	name     string
	model    string
	provider string

	mu       sync.Mutex
	turns    []Turn
	requests []Request
}

// Option configures a MockAgent.
type Option func(*MockAgent)

func WithID(id string) Option {
	return func(m *MockAgent) { m.id = id }
}

func WithName(name string) Option {
	return func(m *MockAgent) { m.name = name }
}

func WithModel(model string) Option {
	return func(m *MockAgent) { m.model = model }
}

// WithTurns queues the replies returned by successive Stream calls.
func WithTurns(turns ...Turn) Option {
	return func(m *MockAgent) { m.turns = append(m.turns, turns...) }
}

// NewMockAgent creates a MockAgent with test defaults.
func NewMockAgent(opts ...Option) *MockAgent {
	m := &MockAgent{
		id:       "mock-agent",
		name:     "mock",
		model:    "mock-model",
		provider: "mock",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *MockAgent) ID() string           { return m.id }
func (m *MockAgent) Name() string         { return m.name }
func (m *MockAgent) Model() string        { return m.model }
func (m *MockAgent) ProviderName() string { return m.provider }

// Enqueue appends turns to the script.
func (m *MockAgent) Enqueue(turns ...Turn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turns...)
}

// Requests returns every request received so far.
func (m *MockAgent) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.requests)
}

// Calls returns the number of Stream calls.
func (m *MockAgent) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Remaining returns the number of unconsumed turns.
func (m *MockAgent) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.turns)
}

func (m *MockAgent) Stream(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) *response.Stream {
	m.mu.Lock()
	m.requests = append(m.requests, Request{
		Messages: slices.Clone(messages),
		Tools:    slices.Clone(tools),
	})
	if len(m.turns) == 0 {
		m.mu.Unlock()
		return response.Failed(ErrNoTurns)
	}
	turn := m.turns[0]
	m.turns = m.turns[1:]
	m.mu.Unlock()

	return response.NewStream(ctx, func(ctx context.Context, emit func(response.Event) error) error {
		for _, delta := range turn.Text {
			if err := emit(response.Text(delta)); err != nil {
				return err
			}
		}
		for _, call := range turn.Calls {
			if err := emit(response.Call(call)); err != nil {
				return err
			}
		}
		if turn.Block {
			<-ctx.Done()
			return context.Cause(ctx)
		}
		return turn.Err
	})
}
