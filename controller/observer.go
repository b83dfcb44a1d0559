package controller

import "github.com/tailored-agentic-units/deskagent/observability"

// Controller event types.
const (
	EventReset         observability.EventType = "controller.reset"
	EventTurnStart     observability.EventType = "controller.turn.start"
	EventTurnComplete  observability.EventType = "controller.turn.complete"
	EventTurnTimeout   observability.EventType = "controller.turn.timeout"
	EventStreamError   observability.EventType = "controller.stream.error"
	EventCommand       observability.EventType = "controller.command"
	EventRecovered     observability.EventType = "controller.recovered"
	EventTerminate     observability.EventType = "controller.terminate"
	EventArchiveFailed observability.EventType = "controller.archive.failed"
)
