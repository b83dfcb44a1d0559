package tools

import "errors"

var (
	ErrNotFound         = errors.New("tool not found")
	ErrAlreadyExists    = errors.New("tool already registered")
	ErrEmptyName        = errors.New("tool name is empty")
	ErrInvalidEntry     = errors.New("invalid tool entry")
	ErrInvalidArguments = errors.New("invalid tool arguments")
	ErrPanicked         = errors.New("tool panicked")
)
