package controller

import "errors"

// ErrTurnTimeout is returned by Ask when a turn exceeds the turn timeout.
var ErrTurnTimeout = errors.New("turn timed out")
