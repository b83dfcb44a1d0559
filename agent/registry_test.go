package agent_test

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/deskagent/agent"
	"github.com/tailored-agentic-units/deskagent/core/config"
)

func ollamaConfig(model string) config.AgentConfig {
	return config.AgentConfig{
		Provider: &config.ProviderConfig{Name: "ollama", BaseURL: "http://localhost:11434"},
		Model:    &config.ModelConfig{Name: model},
	}
}

func definition(name string, tools ...string) agent.Definition {
	return agent.Definition{
		Name:         name,
		Description:  name + " agent",
		SystemPrompt: "You are " + name + ".",
		Tools:        tools,
	}
}

func TestRegistry_GetIsLazyAndCached(t *testing.T) {
	r := agent.NewRegistry()
	if err := r.Register(definition("desk", "move_mouse"), ollamaConfig("qwen3:8b")); err != nil {
		t.Fatal(err)
	}

	a, err := r.Get("desk")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name() != "desk" || a.Model() != "qwen3:8b" {
		t.Errorf("agent %s serving %s", a.Name(), a.Model())
	}

	again, err := r.Get("desk")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID() != a.ID() {
		t.Error("second Get built a new agent")
	}
}

func TestRegistry_GetMissingCredentialsRetries(t *testing.T) {
	r := agent.NewRegistry()
	if err := r.Register(definition("desk"), config.DefaultAgentConfig()); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		if _, err := r.Get("desk"); !errors.Is(err, config.ErrMissingCredentials) {
			t.Fatalf("got %v, want ErrMissingCredentials", err)
		}
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	installed := []string{"move_mouse", "click_mouse", "take_screenshot"}
	check := func(names []string) error {
		for _, n := range names {
			if !slices.Contains(installed, n) {
				return fmt.Errorf("tool %s is not installed", n)
			}
		}
		return nil
	}

	tests := []struct {
		name string
		def  agent.Definition
		want error
	}{
		{"empty name", agent.Definition{}, agent.ErrEmptyAgentName},
		{"duplicate tool", definition("dup", "move_mouse", "move_mouse"), agent.ErrInvalidDefinition},
		{"tool not installed", definition("ghost", "format_drive"), agent.ErrInvalidDefinition},
		{"already registered", definition("desk", "click_mouse"), agent.ErrAgentExists},
	}

	r := agent.NewRegistry(agent.WithToolCheck(check))
	if err := r.Register(definition("desk", "move_mouse"), ollamaConfig("qwen3:8b")); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Register(tt.def, ollamaConfig("qwen3:8b"))
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}

	if got := r.Names(); !slices.Equal(got, []string{"desk"}) {
		t.Errorf("rejected definitions were kept: %v", got)
	}
}

func TestRegistry_NotFound(t *testing.T) {
	r := agent.NewRegistry()

	if _, err := r.Get("nobody"); !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("Get: %v", err)
	}
	if _, err := r.Definition("nobody"); !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("Definition: %v", err)
	}
	if _, err := r.Tools("nobody"); !errors.Is(err, agent.ErrAgentNotFound) {
		t.Errorf("Tools: %v", err)
	}
}

func TestRegistry_DefinitionIsCopy(t *testing.T) {
	tools := []string{"take_screenshot", "click_mouse", "move_mouse"}
	r := agent.NewRegistry()
	if err := r.Register(definition("desk", tools...), ollamaConfig("qwen3:8b")); err != nil {
		t.Fatal(err)
	}
	tools[0] = "delete_file"

	def, err := r.Definition("desk")
	if err != nil {
		t.Fatal(err)
	}
	if def.SystemPrompt != "You are desk." || !def.HasTool("take_screenshot") || def.HasTool("delete_file") {
		t.Errorf("definition = %+v", def)
	}

	sorted, err := r.Tools("desk")
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(sorted, []string{"click_mouse", "move_mouse", "take_screenshot"}) {
		t.Errorf("Tools() = %v", sorted)
	}

	again, _ := r.Definition("desk")
	if again.Tools[0] != "take_screenshot" {
		t.Errorf("Tools() sorted the stored definition: %v", again.Tools)
	}
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	r := agent.NewRegistry()
	if err := r.Register(definition("desk"), ollamaConfig("qwen3:8b")); err != nil {
		t.Fatal(err)
	}

	ids := make([]string, 16)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := r.Get("desk")
			if err != nil {
				t.Error(err)
				return
			}
			ids[i] = a.ID()
		}()
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("concurrent Get built more than one agent: %v", ids)
		}
	}
}
