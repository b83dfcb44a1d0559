package kernel

import "github.com/tailored-agentic-units/deskagent/observability"

// Kernel event types emitted during a turn.
const (
	EventRunStart       observability.EventType = "kernel.run.start"
	EventIterationStart observability.EventType = "kernel.iteration.start"
	EventToolCall       observability.EventType = "kernel.tool.call"
	EventToolComplete   observability.EventType = "kernel.tool.complete"
	EventResponse       observability.EventType = "kernel.response"
	EventError          observability.EventType = "kernel.error"
)
