package desktop

import "errors"

var (
	ErrOutOfBounds   = errors.New("coordinates outside the screen")
	ErrInvalidButton = errors.New("invalid mouse button")
	ErrInvalidRegion = errors.New("invalid screen region")
	ErrEmptyKey      = errors.New("key name is empty")
)
