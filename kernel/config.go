package kernel

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/tailored-agentic-units/deskagent/core/config"
	"github.com/tailored-agentic-units/deskagent/memory"
	"github.com/tailored-agentic-units/deskagent/observability"
	"github.com/tailored-agentic-units/deskagent/session"
	"github.com/tailored-agentic-units/deskagent/vision"
)

const (
	defaultMaxIterations = 10
	defaultObserver      = "slog"
)

// Environment variables read by LoadConfig. For each setting the first
// variable that is set wins.
var envBindings = map[string][]string{
	"agent.provider.api_key":  {"DESKAGENT_API_KEY", "QIANWEN_API_KEY"},
	"agent.provider.base_url": {"DESKAGENT_API_BASE", "QIANWEN_API_BASE"},
	"agent.provider.name":     {"DESKAGENT_PROVIDER"},
	"agent.model.name":        {"DESKAGENT_MODEL"},
}

// Config holds initialization parameters for all subsystems.
// Each subsystem section delegates to that subsystem's config-driven constructor.
type Config struct {
	Agent         config.AgentConfig `json:"agent"`
	Session       session.Config     `json:"session"`
	Memory        memory.Config      `json:"memory"`
	Vision        vision.Config      `json:"vision"`
	MaxIterations int                `json:"max_iterations,omitempty"`
	SystemPrompt  string             `json:"system_prompt,omitempty"`
	Observer      string             `json:"observer,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Agent:         config.DefaultAgentConfig(),
		Session:       session.DefaultConfig(),
		Memory:        memory.DefaultConfig(),
		Vision:        vision.DefaultConfig(),
		MaxIterations: defaultMaxIterations,
		Observer:      defaultObserver,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Session.Merge(&source.Session)
	c.Memory.Merge(&source.Memory)
	c.Vision.Merge(&source.Vision)
	if source.MaxIterations > 0 {
		c.MaxIterations = source.MaxIterations
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

func (c *Config) observer() (observability.Observer, error) {
	name := c.Observer
	if name == "" {
		name = defaultObserver
	}
	return observability.GetObserver(name)
}

// LoadConfig reads a JSON, YAML or TOML config file, overlays the
// credential environment variables, and merges the result onto the
// defaults. An empty filename loads defaults plus environment. Durations
// such as session.turn_timeout are written as strings ("90s").
func LoadConfig(filename string) (*Config, error) {
	v := viper.New()

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if filename != "" {
		v.SetConfigFile(filename)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var loaded Config
	if err := v.Unmarshal(&loaded, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "json"
	}); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := DefaultConfig()
	cfg.Merge(&loaded)
	return &cfg, nil
}
