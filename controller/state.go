package controller

// State is a phase of the controller loop.
type State int32

const (
	StateResetting State = iota
	StateAwaitingInput
	StateDispatching
	StateStreaming
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateResetting:
		return "resetting"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateDispatching:
		return "dispatching"
	case StateStreaming:
		return "streaming"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
