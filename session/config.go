package session

import (
	"time"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
)

const (
	DefaultResetInterval = 3
	DefaultKeepEntries   = 2
	DefaultTurnTimeout   = 60 * time.Second
)

// Config holds the context lifecycle policy applied by the controller.
type Config struct {
	// ResetInterval is the number of completed turns after which the
	// Context is replaced before the next dispatch.
	ResetInterval int `json:"reset_interval,omitempty"`
	// KeepEntries is how many Message Log entries survive a reset.
	KeepEntries int `json:"keep_entries,omitempty"`
	// TurnTimeout bounds one dispatch, including streaming.
	TurnTimeout time.Duration `json:"turn_timeout,omitempty"`
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		ResetInterval: DefaultResetInterval,
		KeepEntries:   DefaultKeepEntries,
		TurnTimeout:   DefaultTurnTimeout,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.ResetInterval > 0 {
		c.ResetInterval = source.ResetInterval
	}
	if source.KeepEntries > 0 {
		c.KeepEntries = source.KeepEntries
	}
	if source.TurnTimeout > 0 {
		c.TurnTimeout = source.TurnTimeout
	}
}

// New starts a Context seeded with messages. Contexts live in memory only.
func New(cfg *Config, seed ...protocol.Message) (Session, error) {
	return NewMemorySession(seed...), nil
}
