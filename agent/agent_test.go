package agent_test

import (
	"errors"
	"testing"

	"github.com/tailored-agentic-units/deskagent/agent"
	"github.com/tailored-agentic-units/deskagent/core/config"
)

func TestNew(t *testing.T) {
	cfg := ollamaConfig("qwen3:8b")
	cfg.Name = "computer_expert_agent"

	a, err := agent.New(&cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if a.Name() != "computer_expert_agent" {
		t.Errorf("got name %q", a.Name())
	}
	if a.ProviderName() != "ollama" {
		t.Errorf("got provider %q, want ollama", a.ProviderName())
	}
	if a.Model() != "qwen3:8b" {
		t.Errorf("got model %q, want qwen3:8b", a.Model())
	}
}

func TestNew_UniqueIDs(t *testing.T) {
	cfg := ollamaConfig("qwen3:8b")

	a1, _ := agent.New(&cfg)
	a2, _ := agent.New(&cfg)
	if a1.ID() == a2.ID() {
		t.Errorf("two agents share ID %q", a1.ID())
	}
}

func TestNew_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.AgentConfig
		want error
	}{
		{
			name: "missing api key",
			cfg: config.AgentConfig{
				Provider: &config.ProviderConfig{Name: "openai", BaseURL: "https://example.com/v1"},
				Model:    &config.ModelConfig{Name: "qwen-max"},
			},
			want: config.ErrMissingCredentials,
		},
		{
			name: "missing model",
			cfg: config.AgentConfig{
				Provider: &config.ProviderConfig{Name: "ollama", BaseURL: "http://localhost:11434"},
			},
			want: config.ErrMissingModel,
		},
		{
			name: "unknown provider",
			cfg: config.AgentConfig{
				Provider: &config.ProviderConfig{Name: "bedrock"},
				Model:    &config.ModelConfig{Name: "m"},
			},
			want: config.ErrUnknownProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agent.New(&tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}
