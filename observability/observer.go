// Package observability carries structured events out of the kernel turn loop
// and the session controller. Level values follow OpenTelemetry severity
// numbers so events can be forwarded to a collector unchanged.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is an OpenTelemetry SeverityNumber. Each named level is the lowest
// number of its severity range.
type Level int

const (
	LevelVerbose Level = 5
	LevelInfo    Level = 9
	LevelWarning Level = 13
	LevelError   Level = 17
)

var severities = []struct {
	max  Level
	text string
	slog slog.Level
}{
	{4, "TRACE", slog.LevelDebug},
	{8, "DEBUG", slog.LevelDebug},
	{12, "INFO", slog.LevelInfo},
	{16, "WARN", slog.LevelWarn},
	{20, "ERROR", slog.LevelError},
}

// String returns the severity text, FATAL above the error range.
func (l Level) String() string {
	for _, s := range severities {
		if l <= s.max {
			return s.text
		}
	}
	return "FATAL"
}

// SlogLevel returns the slog level events of l are logged at.
func (l Level) SlogLevel() slog.Level {
	for _, s := range severities {
		if l <= s.max {
			return s.slog
		}
	}
	return slog.LevelError
}

// EventType names an event, prefixed by the emitting subsystem, as in
// "kernel.tool.call" or "controller.reset".
type EventType string

// Event is one observation. Data holds flat attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// NewEvent stamps an event with the current time.
func NewEvent(typ EventType, level Level, source string, data map[string]any) Event {
	return Event{Type: typ, Level: level, Timestamp: time.Now(), Source: source, Data: data}
}

type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event)

func (f ObserverFunc) OnEvent(ctx context.Context, event Event) { f(ctx, event) }
