package tools

import "fmt"

// Result is the tool execution output that feeds back into the next LLM turn.
// IsError signals to the LLM that the tool invocation failed.
type Result struct {
	Content string
	IsError bool
}

// Text returns a successful result.
func Text(content string) Result {
	return Result{Content: content}
}

// Textf returns a successful result built from a format string.
func Textf(format string, args ...any) Result {
	return Result{Content: fmt.Sprintf(format, args...)}
}

// Failure returns an error result. Tool-level faults travel this way rather
// than as Go errors so the model can read them and react.
func Failure(format string, args ...any) Result {
	return Result{Content: fmt.Sprintf(format, args...), IsError: true}
}
