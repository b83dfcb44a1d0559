package controller

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/memory"
	"github.com/tailored-agentic-units/deskagent/observability"
	"github.com/tailored-agentic-units/deskagent/session"
)

// TranscriptKey returns the memory key a Context is archived under.
func TranscriptKey(sessionID string) string {
	return memory.NamespaceTranscripts + "/" + sessionID + ".md"
}

// archive writes the current Context to the transcript cache. Failures are
// logged and never interrupt the loop.
func (c *Controller) archive(ctx context.Context) {
	if c.transcripts == nil || c.sess == nil {
		return
	}

	msgs := c.sess.Messages()
	if len(msgs) <= c.sess.Seeded() {
		return
	}

	key := TranscriptKey(c.sess.ID())
	c.transcripts.Set(key, []byte(renderTranscript(c.sess, msgs)))

	if err := c.transcripts.Flush(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn("failed to archive transcript", "key", key, "error", err)
		c.observe(ctx, EventArchiveFailed, observability.LevelWarning, map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// renderTranscript writes the Context as markdown. Messages carried over
// from the previous Context are marked so they read as history.
func renderTranscript(sess session.Session, msgs []protocol.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Session %s\n\nStarted %s\n", sess.ID(), sess.Started().Format(time.DateTime))

	for i, m := range msgs {
		heading := string(m.Role)
		if m.Role == protocol.RoleTool {
			heading += ": " + m.Name
		}
		if i < sess.Seeded() {
			heading += " (carried over)"
		}
		fmt.Fprintf(&b, "\n## %s\n\n", heading)

		if m.Content != "" {
			fmt.Fprintf(&b, "%s\n", m.Content)
		}
		for _, tc := range m.ToolCalls {
			fmt.Fprintf(&b, "- call `%s` %s\n", tc.Name, tc.RawArguments())
		}
	}

	return b.String()
}
