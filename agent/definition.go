package agent

import "slices"

// Definition is the static identity of a hosted agent: what it is called,
// how it introduces itself to the model, and which tools it may use.
type Definition struct {
	Name         string
	Description  string
	SystemPrompt string
	Tools        []string
}

// HasTool reports whether the definition offers the named tool.
func (d Definition) HasTool(name string) bool {
	return slices.Contains(d.Tools, name)
}
