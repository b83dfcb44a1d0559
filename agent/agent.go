// Package agent binds an LLM provider and model to a stable identity and
// holds the static Agent Definitions the runtime can host.
//
//	a, err := agent.New(&cfg.Agent)
//	s := a.Stream(ctx, messages, tools)
package agent

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/deskagent/agent/providers"
	"github.com/tailored-agentic-units/deskagent/core/config"
	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/core/response"
)

// Agent streams model turns for a fixed provider and model.
type Agent interface {
	// ID returns a unique UUIDv7 identifier assigned at creation.
	ID() string
	Name() string
	Model() string
	ProviderName() string

	// Stream sends messages and the offered tools to the model. Text
	// deltas arrive first, followed by the tool calls the model requested.
	Stream(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) *response.Stream
}

type llmAgent struct {
	id       string
	name     string
	provider providers.Provider
	model    config.ModelConfig
}

// New validates cfg and creates an Agent for its provider.
func New(cfg *config.AgentConfig) (Agent, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p, err := providers.New(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}

	// Provider options are defaults; model options win.
	model := config.ModelConfig{Options: maps.Clone(cfg.Provider.Options)}
	model.Merge(cfg.Model)

	return &llmAgent{
		id:       uuid.Must(uuid.NewV7()).String(),
		name:     cfg.Name,
		provider: p,
		model:    model,
	}, nil
}

func (a *llmAgent) ID() string           { return a.id }
func (a *llmAgent) Name() string         { return a.name }
func (a *llmAgent) Model() string        { return a.model.Name }
func (a *llmAgent) ProviderName() string { return a.provider.Name() }

func (a *llmAgent) Stream(ctx context.Context, messages []protocol.Message, tools []protocol.Tool) *response.Stream {
	return a.provider.Stream(ctx, &providers.ToolsData{
		Model:    a.model.Name,
		Messages: messages,
		Tools:    tools,
		Options:  a.model.Options,
	})
}
