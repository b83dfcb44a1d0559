package kernel

import "errors"

// ErrMaxIterations is returned by Run when the loop exhausts its iteration
// budget without the agent producing a final response.
var ErrMaxIterations = errors.New("max iterations reached")

// ErrToolNotOffered is reported to the model when it calls a registered
// tool that the hosted agent definition does not offer.
var ErrToolNotOffered = errors.New("tool not offered by this agent")
