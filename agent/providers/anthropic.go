package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tailored-agentic-units/deskagent/core/config"
	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/core/response"
)

// DefaultAnthropicMaxTokens is sent when no max_tokens option is set. The
// Messages API requires the field.
const DefaultAnthropicMaxTokens = 4096

// Anthropic talks to the Anthropic Messages API.
type Anthropic struct {
	*BaseProvider
	client anthropic.Client
}

// NewAnthropic creates an Anthropic provider.
func NewAnthropic(cfg *config.ProviderConfig) *Anthropic {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Anthropic{
		BaseProvider: NewBaseProvider(config.ProviderAnthropic, cfg.BaseURL),
		client:       anthropic.NewClient(opts...),
	}
}

func (p *Anthropic) Stream(ctx context.Context, data *ToolsData) *response.Stream {
	params, err := anthropicParams(data)
	if err != nil {
		return response.Failed(err)
	}

	return response.NewStream(ctx, func(ctx context.Context, emit func(response.Event) error) error {
		stream := p.client.Messages.NewStreaming(ctx, params)
		defer stream.Close()

		msg := anthropic.Message{}
		for stream.Next() {
			event := stream.Current()
			if err := msg.Accumulate(event); err != nil {
				return fmt.Errorf("error accumulating message: %w", err)
			}

			delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
				if err := emit(response.Text(text.Text)); err != nil {
					return err
				}
			}
		}

		if err := stream.Err(); err != nil {
			return fmt.Errorf("anthropic streaming error: %w", err)
		}

		for _, call := range anthropicToolCalls(msg.Content) {
			if err := emit(response.Call(call)); err != nil {
				return err
			}
		}
		return nil
	})
}

func anthropicParams(data *ToolsData) (anthropic.MessageNewParams, error) {
	messages, system, err := anthropicMessages(data.Messages)
	if err != nil {
		return anthropic.MessageNewParams{}, err
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(data.Model),
		Messages:  messages,
		MaxTokens: DefaultAnthropicMaxTokens,
		Tools:     anthropicTools(data.Tools),
	}
	if len(system) > 0 {
		params.System = system
	}

	if v, ok := intOption(data.Options, OptionMaxTokens); ok && v > 0 {
		params.MaxTokens = v
	}
	if v, ok := floatOption(data.Options, OptionTemperature); ok {
		params.Temperature = anthropic.Float(v)
	}
	if v, ok := floatOption(data.Options, OptionTopP); ok {
		params.TopP = anthropic.Float(v)
	}

	if data.Model == "" {
		return params, fmt.Errorf("anthropic: %w", config.ErrMissingModel)
	}
	return params, nil
}

// anthropicMessages splits system messages out of the conversation and
// folds consecutive tool results into a single user turn.
func anthropicMessages(messages []protocol.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam, error) {
	var system []anthropic.TextBlockParam
	result := make([]anthropic.MessageParam, 0, len(messages))
	lastWasTool := false

	for _, msg := range messages {
		switch msg.Role {
		case protocol.RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
			lastWasTool = false

		case protocol.RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var input any
				if err := json.Unmarshal(tc.RawArguments(), &input); err != nil {
					return nil, nil, fmt.Errorf("tool call %q: invalid tool arguments: %w", tc.Name, err)
				}
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
			}
			// The API rejects empty text blocks.
			if len(blocks) > 0 {
				result = append(result, anthropic.NewAssistantMessage(blocks...))
			}
			lastWasTool = false

		case protocol.RoleTool:
			block := anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false)
			if lastWasTool {
				last := &result[len(result)-1]
				last.Content = append(last.Content, block)
			} else {
				result = append(result, anthropic.NewUserMessage(block))
			}
			lastWasTool = true

		default:
			result = append(result, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
			lastWasTool = false
		}
	}

	return result, system, nil
}

func anthropicTools(tools []protocol.Tool) []anthropic.ToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, tool := range tools {
		schema := anthropic.ToolInputSchemaParam{
			Properties: tool.Properties(),
		}
		if req := tool.Required(); len(req) > 0 {
			schema.Required = req
		}

		result[i] = anthropic.ToolUnionParamOfTool(schema, tool.Name)
		if tool.Description != "" {
			result[i].OfTool.Description = anthropic.String(tool.Description)
		}
	}
	return result
}

func anthropicToolCalls(content []anthropic.ContentBlockUnion) []protocol.ToolCall {
	var calls []protocol.ToolCall
	for i, block := range content {
		toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok {
			continue
		}

		args := string(toolUse.Input)
		if args == "" {
			args = "{}"
		}
		calls = append(calls, protocol.ToolCall{
			ID:        callID(toolUse.ID, i),
			Name:      toolUse.Name,
			Arguments: args,
		})
	}
	return calls
}
