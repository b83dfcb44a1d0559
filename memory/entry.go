package memory

import (
	"fmt"
	"path"
	"strings"
)

// Top-level namespaces of the knowledge directory.
const (
	// NamespaceMemory holds notes appended to every system prompt.
	NamespaceMemory = "memory"
	// NamespaceReference holds documents served by the read_tutorial tool.
	NamespaceReference = "reference"
	// NamespaceTranscripts receives one archived conversation per context.
	NamespaceTranscripts = "transcripts"
)

// Entry is one document. Keys are /-separated paths relative to the store
// root.
type Entry struct {
	Key   string
	Value []byte
}

// CleanKey normalizes key and rejects anything that would resolve outside
// the store root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.ContainsRune(key, '\\') || path.IsAbs(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return cleaned, nil
}
