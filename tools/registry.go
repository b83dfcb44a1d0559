package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
)

// Handler runs one tool call. args is the JSON object produced by the model.
type Handler func(ctx context.Context, args json.RawMessage) (Result, error)

// Entry pairs a tool definition with its handler. Each tool family exposes
// its catalogue as entries so it can be installed or served as a unit.
type Entry struct {
	Tool    protocol.Tool
	Handler Handler
}

var (
	mu      sync.RWMutex
	catalog = map[string]Entry{}
)

func validate(e Entry) error {
	if e.Tool.Name == "" {
		return ErrEmptyName
	}
	if e.Handler == nil {
		return fmt.Errorf("%w: %s has no handler", ErrInvalidEntry, e.Tool.Name)
	}
	return nil
}

// Register adds a tool. A name already in use fails with ErrAlreadyExists.
func Register(tool protocol.Tool, handler Handler) error {
	e := Entry{Tool: tool, Handler: handler}
	if err := validate(e); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if _, ok := catalog[tool.Name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tool.Name)
	}
	catalog[tool.Name] = e
	return nil
}

// Replace swaps the definition and handler of an installed tool.
func Replace(tool protocol.Tool, handler Handler) error {
	e := Entry{Tool: tool, Handler: handler}
	if err := validate(e); err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()

	if _, ok := catalog[tool.Name]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, tool.Name)
	}
	catalog[tool.Name] = e
	return nil
}

// Install registers each entry, replacing a tool of the same name. Tool
// families bound to a new desktop driver or knowledge cache are installed
// again this way. It stops at the first invalid entry.
func Install(entries ...Entry) error {
	for _, e := range entries {
		err := Register(e.Tool, e.Handler)
		if errors.Is(err, ErrAlreadyExists) {
			err = Replace(e.Tool, e.Handler)
		}
		if err != nil {
			return fmt.Errorf("install %s: %w", e.Tool.Name, err)
		}
	}
	return nil
}

// List returns every installed definition sorted by name.
func List() []protocol.Tool {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]protocol.Tool, 0, len(catalog))
	for _, e := range catalog {
		out = append(out, e.Tool)
	}
	slices.SortFunc(out, func(a, b protocol.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Subset returns the named definitions in the order given, failing with
// ErrNotFound on the first name that is not installed.
func Subset(names []string) ([]protocol.Tool, error) {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]protocol.Tool, 0, len(names))
	for _, name := range names {
		e, ok := catalog[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		out = append(out, e.Tool)
	}
	return out, nil
}

// Execute runs the named tool. A handler error or panic is returned wrapped
// with the tool name; failures the model should see travel in Result.
func Execute(ctx context.Context, name string, args json.RawMessage) (result Result, err error) {
	mu.RLock()
	e, ok := catalog[name]
	mu.RUnlock()

	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	defer func() {
		if r := recover(); r != nil {
			result, err = Result{}, fmt.Errorf("%w: %s: %v", ErrPanicked, name, r)
		}
	}()

	result, err = e.Handler(ctx, args)
	if err != nil {
		return Result{}, fmt.Errorf("tool %s execution failed: %w", name, err)
	}
	return result, nil
}
