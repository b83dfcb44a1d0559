package providers

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/tailored-agentic-units/deskagent/core/config"
	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/core/response"
)

// OpenAI talks to any OpenAI-compatible chat completions endpoint, such as
// DashScope's compatible mode for Qwen models.
type OpenAI struct {
	*BaseProvider
	client openai.Client
}

// NewOpenAI creates an OpenAI-compatible provider.
func NewOpenAI(cfg *config.ProviderConfig) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAI{
		BaseProvider: NewBaseProvider(config.ProviderOpenAI, cfg.BaseURL),
		client:       openai.NewClient(opts...),
	}
}

func (p *OpenAI) Stream(ctx context.Context, data *ToolsData) *response.Stream {
	params, err := openAIParams(data)
	if err != nil {
		return response.Failed(err)
	}

	return response.NewStream(ctx, func(ctx context.Context, emit func(response.Event) error) error {
		stream := p.client.Chat.Completions.NewStreaming(ctx, params)
		defer stream.Close()

		acc := openai.ChatCompletionAccumulator{}
		var calls []protocol.ToolCall
		seen := map[int]bool{}

		for stream.Next() {
			chunk := stream.Current()
			acc.AddChunk(chunk)

			if tool, ok := acc.JustFinishedToolCall(); ok && !seen[tool.Index] {
				seen[tool.Index] = true
				calls = append(calls, protocol.ToolCall{
					ID:        callID(tool.ID, tool.Index),
					Name:      tool.Name,
					Arguments: tool.Arguments,
				})
			}

			if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
				if err := emit(response.Text(chunk.Choices[0].Delta.Content)); err != nil {
					return err
				}
			}
		}

		if err := stream.Err(); err != nil {
			return fmt.Errorf("openai streaming error: %w", err)
		}

		// The last call of a reply may only be visible on the accumulated
		// message when the stream ends without a separate finish chunk.
		if len(acc.Choices) > 0 {
			for i, tc := range acc.Choices[0].Message.ToolCalls {
				if seen[i] || tc.Function.Name == "" {
					continue
				}
				calls = append(calls, protocol.ToolCall{
					ID:        callID(tc.ID, i),
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				})
			}
		}

		for _, call := range calls {
			if err := emit(response.Call(call)); err != nil {
				return err
			}
		}
		return nil
	})
}

func openAIParams(data *ToolsData) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(data.Model),
		Messages: openAIMessages(data.Messages),
		Tools:    openAITools(data.Tools),
	}

	if v, ok := floatOption(data.Options, OptionTemperature); ok {
		params.Temperature = openai.Float(v)
	}
	if v, ok := intOption(data.Options, OptionMaxTokens); ok {
		params.MaxTokens = openai.Int(v)
	}
	if v, ok := floatOption(data.Options, OptionTopP); ok {
		params.TopP = openai.Float(v)
	}

	if data.Model == "" {
		return params, fmt.Errorf("openai: %w", config.ErrMissingModel)
	}
	return params, nil
}

func openAIMessages(messages []protocol.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case protocol.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case protocol.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				result = append(result, openai.AssistantMessage(msg.Content))
				continue
			}
			assistant := openai.ChatCompletionAssistantMessageParam{
				ToolCalls: make([]openai.ChatCompletionMessageToolCallUnionParam, len(msg.ToolCalls)),
			}
			if msg.Content != "" {
				assistant.Content.OfString = openai.String(msg.Content)
			}
			for i, tc := range msg.ToolCalls {
				assistant.ToolCalls[i] = openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: string(tc.RawArguments()),
						},
					},
				}
			}
			result = append(result, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case protocol.RoleTool:
			result = append(result, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}

	return result
}

func openAITools(tools []protocol.Tool) []openai.ChatCompletionToolUnionParam {
	if len(tools) == 0 {
		return nil
	}

	result := make([]openai.ChatCompletionToolUnionParam, len(tools))
	for i, tool := range tools {
		result[i] = openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        tool.Name,
			Description: openai.String(tool.Description),
			Parameters:  openai.FunctionParameters(tool.Parameters),
		})
	}
	return result
}
