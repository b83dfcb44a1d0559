// Package providers adapts LLM backends to the provider-neutral protocol
// types. Every provider streams a turn as text deltas followed by the
// completed tool calls the model requested.
package providers

import (
	"context"
	"fmt"

	"github.com/tailored-agentic-units/deskagent/core/config"
	"github.com/tailored-agentic-units/deskagent/core/response"
)

// Provider streams one model turn.
type Provider interface {
	Name() string
	BaseURL() string

	// Stream sends data to the backend. The returned stream yields
	// response.KindText events as text arrives and one
	// response.KindToolCall event per requested call once the reply is
	// complete.
	Stream(ctx context.Context, data *ToolsData) *response.Stream
}

// BaseProvider carries the identity shared by all providers.
type BaseProvider struct {
	name    string
	baseURL string
}

// NewBaseProvider creates a BaseProvider.
func NewBaseProvider(name, baseURL string) *BaseProvider {
	return &BaseProvider{name: name, baseURL: baseURL}
}

func (p *BaseProvider) Name() string {
	return p.name
}

func (p *BaseProvider) BaseURL() string {
	return p.baseURL
}

// New creates the provider named by cfg.Name.
func New(cfg *config.ProviderConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: provider section is missing", config.ErrMissingCredentials)
	}

	switch cfg.Name {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case config.ProviderOllama:
		return NewOllama(cfg)
	case config.ProviderAnthropic:
		return NewAnthropic(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Name)
	}
}

// callID returns id, or a positional id when the backend supplied none.
func callID(id string, index int) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("call_%d", index)
}
