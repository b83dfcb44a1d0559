package providers

import "github.com/tailored-agentic-units/deskagent/core/protocol"

// ToolsData contains everything a provider needs for one tool-enabled
// chat request.
type ToolsData struct {
	Model    string
	Messages []protocol.Message
	Tools    []protocol.Tool
	Options  map[string]any
}
