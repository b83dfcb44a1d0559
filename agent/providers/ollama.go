package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"github.com/tailored-agentic-units/deskagent/core/config"
	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/core/response"
)

// Ollama talks to a local or remote Ollama server.
type Ollama struct {
	*BaseProvider
	client *api.Client
}

// NewOllama creates an Ollama provider for cfg.BaseURL.
func NewOllama(cfg *config.ProviderConfig) (*Ollama, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid ollama base url %q: scheme and host are required", cfg.BaseURL)
	}

	return &Ollama{
		BaseProvider: NewBaseProvider(config.ProviderOllama, cfg.BaseURL),
		client:       api.NewClient(base, http.DefaultClient),
	}, nil
}

func (p *Ollama) Stream(ctx context.Context, data *ToolsData) *response.Stream {
	messages, err := ollamaMessages(data.Messages)
	if err != nil {
		return response.Failed(err)
	}

	stream := true
	req := &api.ChatRequest{
		Model:    data.Model,
		Messages: messages,
		Tools:    ollamaTools(data.Tools),
		Stream:   &stream,
		Options:  ollamaOptions(data.Options),
	}

	return response.NewStream(ctx, func(ctx context.Context, emit func(response.Event) error) error {
		var calls []api.ToolCall

		err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
			calls = append(calls, resp.Message.ToolCalls...)
			if resp.Message.Content == "" {
				return nil
			}
			return emit(response.Text(resp.Message.Content))
		})
		if err != nil {
			return fmt.Errorf("ollama streaming error: %w", err)
		}

		for _, call := range fromOllamaToolCalls(calls) {
			if err := emit(response.Call(call)); err != nil {
				return err
			}
		}
		return nil
	})
}

func ollamaOptions(opts map[string]any) map[string]any {
	result := map[string]any{}
	if v, ok := floatOption(opts, OptionTemperature); ok {
		result["temperature"] = v
	}
	if v, ok := floatOption(opts, OptionTopP); ok {
		result["top_p"] = v
	}
	if v, ok := intOption(opts, OptionMaxTokens); ok {
		result["num_predict"] = v
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func ollamaMessages(messages []protocol.Message) ([]api.Message, error) {
	result := make([]api.Message, len(messages))

	for i, msg := range messages {
		result[i] = api.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
		if msg.Role == protocol.RoleTool {
			result[i].ToolName = msg.Name
		}

		for _, tc := range msg.ToolCalls {
			args, err := decodeArguments(tc.Arguments)
			if err != nil {
				return nil, fmt.Errorf("tool call %q: %w", tc.Name, err)
			}
			result[i].ToolCalls = append(result[i].ToolCalls, api.ToolCall{
				Function: api.ToolCallFunction{
					Name:      tc.Name,
					Arguments: args,
				},
			})
		}
	}

	return result, nil
}

func fromOllamaToolCalls(calls []api.ToolCall) []protocol.ToolCall {
	if len(calls) == 0 {
		return nil
	}

	result := make([]protocol.ToolCall, len(calls))
	for i, call := range calls {
		result[i] = protocol.ToolCall{
			ID:        callID("", i),
			Name:      call.Function.Name,
			Arguments: encodeArguments(call.Function.Arguments),
		}
	}
	return result
}

func ollamaTools(tools []protocol.Tool) []api.Tool {
	if len(tools) == 0 {
		return nil
	}

	result := make([]api.Tool, len(tools))
	for i, tool := range tools {
		params := api.ToolFunctionParameters{
			Type:       "object",
			Required:   tool.Required(),
			Properties: make(map[string]api.ToolProperty),
		}
		for name, prop := range tool.Properties() {
			params.Properties[name] = ollamaProperty(prop)
		}

		result[i] = api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		}
	}
	return result
}

func ollamaProperty(value any) api.ToolProperty {
	prop := api.ToolProperty{}

	schema, ok := value.(map[string]any)
	if !ok {
		b, err := json.Marshal(value)
		if err != nil || json.Unmarshal(b, &schema) != nil {
			return prop
		}
	}

	switch t := schema["type"].(type) {
	case string:
		prop.Type = api.PropertyType{t}
	case []string:
		prop.Type = api.PropertyType(t)
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok {
				prop.Type = append(prop.Type, s)
			}
		}
	}

	if desc, ok := schema["description"].(string); ok {
		prop.Description = desc
	}

	switch enum := schema["enum"].(type) {
	case []any:
		prop.Enum = enum
	case []string:
		for _, s := range enum {
			prop.Enum = append(prop.Enum, s)
		}
	}

	if items, ok := schema["items"]; ok {
		prop.Items = items
	}

	return prop
}
