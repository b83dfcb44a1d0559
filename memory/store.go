// Package memory holds the agent's durable documents: standing notes folded
// into the system prompt, reference material the model can read on request,
// and archived conversation transcripts. Documents live in a hierarchical
// key-value namespace backed by pluggable storage, with a cache in front.
package memory

import (
	"context"
	"fmt"
	"strings"
)

// Store reads and writes documents. Implementations do no caching.
type Store interface {
	// List returns every key in the store in lexical order.
	List(ctx context.Context) ([]string, error)
	// Load returns the documents for keys. A missing key fails the whole call
	// with ErrKeyNotFound.
	Load(ctx context.Context, keys ...string) ([]Entry, error)
	// Save creates or replaces documents.
	Save(ctx context.Context, entries ...Entry) error
}

// Notes loads every document under the memory namespace, in key order.
func Notes(ctx context.Context, s Store) ([]Entry, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	var notes []string
	for _, key := range keys {
		if InNamespace(key, NamespaceMemory) {
			notes = append(notes, key)
		}
	}
	if len(notes) == 0 {
		return nil, nil
	}

	entries, err := s.Load(ctx, notes...)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	return entries, nil
}

// InNamespace reports whether key lives under the top-level namespace ns.
func InNamespace(key, ns string) bool {
	return strings.HasPrefix(key, ns+"/")
}
