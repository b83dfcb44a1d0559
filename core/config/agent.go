// Package config holds the agent-level configuration shared by the agent,
// provider, and kernel packages.
package config

import (
	"fmt"
	"maps"
)

// Supported provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

const (
	defaultProvider = ProviderOpenAI
	defaultModel    = "qwen-max"
)

// ProviderConfig selects and authenticates an LLM backend.
type ProviderConfig struct {
	Name    string         `json:"name,omitempty"`
	BaseURL string         `json:"base_url,omitempty"`
	APIKey  string         `json:"api_key,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// ModelConfig names the model and carries request options such as
// temperature or max_tokens.
type ModelConfig struct {
	Name    string         `json:"name,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

// AgentConfig describes how to reach the model behind an agent.
type AgentConfig struct {
	Name     string          `json:"name,omitempty"`
	Provider *ProviderConfig `json:"provider,omitempty"`
	Model    *ModelConfig    `json:"model,omitempty"`
}

// DefaultAgentConfig returns an OpenAI-compatible configuration for the
// qwen-max model. Credentials are left empty.
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		Name: "computer_expert_agent",
		Provider: &ProviderConfig{
			Name: defaultProvider,
		},
		Model: &ModelConfig{
			Name:    defaultModel,
			Options: map[string]any{},
		},
	}
}

// Merge applies non-zero values from source into c.
func (c *AgentConfig) Merge(source *AgentConfig) {
	if source == nil {
		return
	}
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Provider != nil {
		if c.Provider == nil {
			c.Provider = &ProviderConfig{}
		}
		c.Provider.Merge(source.Provider)
	}

	if source.Model != nil {
		if c.Model == nil {
			c.Model = &ModelConfig{}
		}
		c.Model.Merge(source.Model)
	}
}

// Merge applies non-zero values from source into c. Options are merged
// key by key.
func (c *ProviderConfig) Merge(source *ProviderConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKey != "" {
		c.APIKey = source.APIKey
	}
	if len(source.Options) > 0 {
		if c.Options == nil {
			c.Options = make(map[string]any, len(source.Options))
		}
		maps.Copy(c.Options, source.Options)
	}
}

// Merge applies non-zero values from source into c. Options are merged
// key by key.
func (c *ModelConfig) Merge(source *ModelConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}
	if len(source.Options) > 0 {
		if c.Options == nil {
			c.Options = make(map[string]any, len(source.Options))
		}
		maps.Copy(c.Options, source.Options)
	}
}

// Validate reports configuration that would make every request fail.
// OpenAI-compatible and Anthropic backends need both an API key and a base
// URL; Ollama needs only a base URL.
func (c *AgentConfig) Validate() error {
	if c.Provider == nil {
		return fmt.Errorf("%w: provider section is missing", ErrMissingCredentials)
	}
	if c.Model == nil || c.Model.Name == "" {
		return ErrMissingModel
	}

	switch c.Provider.Name {
	case ProviderOpenAI, ProviderAnthropic:
		if c.Provider.APIKey == "" {
			return fmt.Errorf("%w: api key is empty", ErrMissingCredentials)
		}
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("%w: base url is empty", ErrMissingCredentials)
		}
	case ProviderOllama:
		if c.Provider.BaseURL == "" {
			return fmt.Errorf("%w: base url is empty", ErrMissingCredentials)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.Provider.Name)
	}
	return nil
}
