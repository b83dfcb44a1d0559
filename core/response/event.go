// Package response defines the incremental event stream produced by a
// model turn.
package response

import "github.com/tailored-agentic-units/deskagent/core/protocol"

// Kind classifies a stream event.
type Kind string

const (
	// KindText carries a fragment of assistant text in Delta.
	KindText Kind = "text"
	// KindToolCall announces a completed tool call requested by the model.
	KindToolCall Kind = "tool_call"
	// KindToolResult reports the outcome of an executed tool call.
	KindToolResult Kind = "tool_result"
)

// Event is a single item of a Stream. Which fields are set depends on Kind.
type Event struct {
	Kind     Kind
	Delta    string
	ToolCall *protocol.ToolCall
	Result   string
	IsError  bool
}

// Text creates a KindText event.
func Text(delta string) Event {
	return Event{Kind: KindText, Delta: delta}
}

// Call creates a KindToolCall event.
func Call(tc protocol.ToolCall) Event {
	return Event{Kind: KindToolCall, ToolCall: &tc}
}

// ToolResult creates a KindToolResult event for tc.
func ToolResult(tc protocol.ToolCall, content string, isError bool) Event {
	return Event{Kind: KindToolResult, ToolCall: &tc, Result: content, IsError: isError}
}

// TokenUsage reports token counts when a provider supplies them.
type TokenUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}
