// Package reference serves reference documents from the memory store to the
// model.
package reference

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/memory"
	"github.com/tailored-agentic-units/deskagent/tools"
)

// DefaultDocument is read when no name is given.
const DefaultDocument = "tutorial.md"

const prefix = memory.NamespaceReference + "/"

// Library reads documents under the reference namespace.
type Library struct {
	cache *memory.Cache
}

// New returns a Library over cache. A nil cache yields a library that
// reports no documents.
func New(cache *memory.Cache) *Library {
	return &Library{cache: cache}
}

// Read returns the named document. A missing document lists what is
// available instead.
func (l *Library) Read(ctx context.Context, name string) tools.Result {
	if name == "" {
		name = DefaultDocument
	}
	if l.cache == nil {
		return tools.Failure("no reference library is configured; cannot read '%s'", name)
	}

	key, err := memory.CleanKey(prefix + strings.TrimPrefix(name, "/"))
	if err != nil || !strings.HasPrefix(key, prefix) {
		return tools.Failure("invalid document name '%s'", name)
	}

	content, err := l.cache.Read(ctx, key)
	switch {
	case errors.Is(err, memory.ErrKeyNotFound):
		return tools.Failure("reference document '%s' not found; available: %s", name, l.available())
	case err != nil:
		return tools.Failure("failed to read reference document '%s': %v", name, err)
	}
	return tools.Textf("Reference document '%s':\n%s", name, content)
}

// Documents lists the available document names.
func (l *Library) Documents() []string {
	if l.cache == nil {
		return nil
	}
	keys := l.cache.KeysWithPrefix(prefix)
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = strings.TrimPrefix(k, prefix)
	}
	return names
}

func (l *Library) available() string {
	docs := l.Documents()
	if len(docs) == 0 {
		return "none"
	}
	return strings.Join(docs, ", ")
}

// Entries returns the read_tutorial tool bound to l.
func (l *Library) Entries() []tools.Entry {
	return []tools.Entry{
		{
			Tool: protocol.Tool{
				Name: "read_tutorial",
				Description: "Read a reference document about Windows and file operations. " +
					"Call this before answering Windows or file management questions.",
				Parameters: tools.Object(map[string]any{
					"name": tools.String("Document name (default tutorial.md)"),
				}),
			},
			Handler: func(ctx context.Context, raw json.RawMessage) (tools.Result, error) {
				var a struct {
					Name string `json:"name"`
				}
				if err := tools.Decode(raw, &a); err != nil {
					return tools.Result{}, err
				}
				return l.Read(ctx, a.Name), nil
			},
		},
	}
}
