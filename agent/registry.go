package agent

import (
	"fmt"
	"slices"
	"sync"

	"github.com/tailored-agentic-units/deskagent/core/config"
)

type registration struct {
	def   Definition
	cfg   config.AgentConfig
	agent Agent
}

// Registry pairs agent definitions with the model configuration serving
// each. The Agent is built on the first Get, so a definition can be
// registered and inspected before credentials are checked.
type Registry struct {
	check func(tools []string) error

	mu      sync.Mutex
	entries map[string]*registration
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithToolCheck makes Register reject a definition when check fails for its
// tool names, typically because a tool is not installed.
func WithToolCheck(check func(tools []string) error) RegistryOption {
	return func(r *Registry) {
		r.check = check
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{entries: make(map[string]*registration)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds def served by the model in cfg.
func (r *Registry) Register(def Definition, cfg config.AgentConfig) error {
	if def.Name == "" {
		return ErrEmptyAgentName
	}
	seen := make(map[string]bool, len(def.Tools))
	for _, name := range def.Tools {
		if seen[name] {
			return fmt.Errorf("%w: %s offers %s twice", ErrInvalidDefinition, def.Name, name)
		}
		seen[name] = true
	}
	if r.check != nil {
		if err := r.check(def.Tools); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidDefinition, def.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrAgentExists, def.Name)
	}
	def.Tools = slices.Clone(def.Tools)
	r.entries[def.Name] = &registration{def: def, cfg: cfg}
	return nil
}

// Get returns the agent serving name, creating it on first use. Creation
// errors such as ErrMissingCredentials are not cached.
func (r *Registry) Get(name string) (Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	if reg.agent != nil {
		return reg.agent, nil
	}

	cfg := reg.cfg
	if cfg.Name == "" {
		cfg.Name = name
	}
	a, err := New(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create agent %q: %w", name, err)
	}
	reg.agent = a
	return a, nil
}

// Definition returns a copy of the definition registered under name.
func (r *Registry) Definition(name string) (Definition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.entries[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrAgentNotFound, name)
	}
	def := reg.def
	def.Tools = slices.Clone(def.Tools)
	return def, nil
}

// Tools returns the sorted tool names offered by name.
func (r *Registry) Tools(name string) ([]string, error) {
	def, err := r.Definition(name)
	if err != nil {
		return nil, err
	}
	slices.Sort(def.Tools)
	return def.Tools, nil
}

// Names returns the registered agent names in order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
