package session

import (
	"slices"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
)

// Log is the Message Log: user inputs and the concatenated assistant reply
// of each turn, kept across Context resets. It is a record for seeding and
// archiving, not the authoritative conversation.
//
// A Log is owned by a single goroutine.
type Log struct {
	entries []protocol.Message
}

// Append records a role-tagged entry.
func (l *Log) Append(role protocol.Role, content string) {
	l.entries = append(l.entries, protocol.NewMessage(role, content))
}

// Trim keeps only the most recent n entries. A non-positive n empties the
// log.
func (l *Log) Trim(n int) {
	if n <= 0 {
		l.entries = nil
		return
	}
	if len(l.entries) > n {
		l.entries = slices.Clone(l.entries[len(l.entries)-n:])
	}
}

// Entries returns a copy of the log.
func (l *Log) Entries() []protocol.Message {
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}
