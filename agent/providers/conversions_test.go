package providers

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
)

func diskConversation() []protocol.Message {
	call := protocol.ToolCall{ID: "call_1", Name: "check_disk_space", Arguments: `{"drive":"C"}`}
	return []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "You are a computer operation expert."),
		protocol.NewMessage(protocol.RoleUser, "How much space is left on C?"),
		{Role: protocol.RoleAssistant, ToolCalls: []protocol.ToolCall{call}},
		protocol.NewToolResult(call, "Drive C: total 476.00 GB"),
		protocol.NewMessage(protocol.RoleAssistant, "About half of C is free."),
	}
}

func screenTool() protocol.Tool {
	return protocol.Tool{
		Name:        "click_mouse",
		Description: "Click a mouse button",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"x":      map[string]any{"type": "integer", "description": "X coordinate"},
				"button": map[string]any{"type": "string", "enum": []string{"left", "right", "middle"}},
			},
			"required": []string{"x"},
		},
	}
}

func roundTrip(t *testing.T, v any) []map[string]any {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var out []map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	return out
}

func TestOllamaMessages(t *testing.T) {
	got, err := ollamaMessages(diskConversation())
	if err != nil {
		t.Fatalf("ollamaMessages failed: %v", err)
	}

	if len(got) != 5 {
		t.Fatalf("got %d messages, want 5", len(got))
	}

	if got[0].Role != "system" || got[1].Role != "user" {
		t.Errorf("roles not preserved: %q, %q", got[0].Role, got[1].Role)
	}

	if len(got[2].ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(got[2].ToolCalls))
	}
	fn := got[2].ToolCalls[0].Function
	if fn.Name != "check_disk_space" || fn.Arguments["drive"] != "C" {
		t.Errorf("unexpected tool call %+v", fn)
	}

	if got[3].Role != "tool" || got[3].ToolName != "check_disk_space" {
		t.Errorf("tool result not mapped: %+v", got[3])
	}
}

func TestOllamaMessages_InvalidArguments(t *testing.T) {
	msgs := []protocol.Message{{
		Role:      protocol.RoleAssistant,
		ToolCalls: []protocol.ToolCall{{ID: "c", Name: "move_mouse", Arguments: "{x:"}},
	}}

	if _, err := ollamaMessages(msgs); err == nil {
		t.Error("expected error for malformed arguments")
	}
}

func TestFromOllamaToolCalls(t *testing.T) {
	if got := fromOllamaToolCalls(nil); got != nil {
		t.Errorf("got %v, want nil", got)
	}

	got := fromOllamaToolCalls([]api.ToolCall{
		{Function: api.ToolCallFunction{Name: "get_screen_size", Arguments: map[string]any{}}},
		{Function: api.ToolCallFunction{Name: "move_mouse", Arguments: map[string]any{"x": float64(10)}}},
	})

	if len(got) != 2 {
		t.Fatalf("got %d calls, want 2", len(got))
	}
	if got[0].ID != "call_0" || got[1].ID != "call_1" {
		t.Errorf("got ids %q, %q, want call_0, call_1", got[0].ID, got[1].ID)
	}
	if got[0].Arguments != "{}" {
		t.Errorf("got arguments %q, want {}", got[0].Arguments)
	}
	if got[1].Arguments != `{"x":10}` {
		t.Errorf("got arguments %q, want {\"x\":10}", got[1].Arguments)
	}
}

func TestOllamaTools(t *testing.T) {
	if ollamaTools(nil) != nil {
		t.Error("no tools should map to nil")
	}

	got := ollamaTools([]protocol.Tool{screenTool()})
	if len(got) != 1 {
		t.Fatalf("got %d tools, want 1", len(got))
	}

	fn := got[0].Function
	if got[0].Type != "function" || fn.Name != "click_mouse" {
		t.Errorf("unexpected tool %+v", got[0])
	}
	if len(fn.Parameters.Required) != 1 || fn.Parameters.Required[0] != "x" {
		t.Errorf("got required %v, want [x]", fn.Parameters.Required)
	}

	x := fn.Parameters.Properties["x"]
	if len(x.Type) != 1 || x.Type[0] != "integer" || x.Description != "X coordinate" {
		t.Errorf("unexpected x property %+v", x)
	}
	button := fn.Parameters.Properties["button"]
	if len(button.Enum) != 3 || button.Enum[1] != "right" {
		t.Errorf("unexpected button enum %v", button.Enum)
	}
}

func TestOllamaOptions(t *testing.T) {
	if ollamaOptions(nil) != nil {
		t.Error("empty options should map to nil")
	}

	got := ollamaOptions(map[string]any{"temperature": 0.2, "max_tokens": 256})
	if got["temperature"] != 0.2 || got["num_predict"] != int64(256) {
		t.Errorf("unexpected options %v", got)
	}
}

func TestOpenAIMessages(t *testing.T) {
	got := roundTrip(t, openAIMessages(diskConversation()))

	if len(got) != 5 {
		t.Fatalf("got %d messages, want 5", len(got))
	}

	wantRoles := []string{"system", "user", "assistant", "tool", "assistant"}
	for i, role := range wantRoles {
		if got[i]["role"] != role {
			t.Errorf("message %d: got role %v, want %s", i, got[i]["role"], role)
		}
	}

	calls, ok := got[2]["tool_calls"].([]any)
	if !ok || len(calls) != 1 {
		t.Fatalf("assistant tool_calls missing: %v", got[2])
	}
	call := calls[0].(map[string]any)
	fn := call["function"].(map[string]any)
	if call["id"] != "call_1" || fn["name"] != "check_disk_space" || fn["arguments"] != `{"drive":"C"}` {
		t.Errorf("unexpected tool call %v", call)
	}

	if got[3]["tool_call_id"] != "call_1" {
		t.Errorf("got tool_call_id %v, want call_1", got[3]["tool_call_id"])
	}
}

func TestOpenAIParams(t *testing.T) {
	params, err := openAIParams(&ToolsData{
		Model:    "qwen-max",
		Messages: diskConversation(),
		Tools:    []protocol.Tool{screenTool()},
		Options:  map[string]any{"temperature": 0.3, "max_tokens": 1024, "top_p": 0.9},
	})
	if err != nil {
		t.Fatalf("openAIParams failed: %v", err)
	}

	b, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if body["model"] != "qwen-max" {
		t.Errorf("got model %v, want qwen-max", body["model"])
	}
	if body["temperature"] != 0.3 || body["max_tokens"] != float64(1024) || body["top_p"] != 0.9 {
		t.Errorf("options not mapped: temperature=%v max_tokens=%v top_p=%v",
			body["temperature"], body["max_tokens"], body["top_p"])
	}

	tools, ok := body["tools"].([]any)
	if !ok || len(tools) != 1 {
		t.Fatalf("got tools %v, want 1 tool", body["tools"])
	}
	fn := tools[0].(map[string]any)["function"].(map[string]any)
	if fn["name"] != "click_mouse" {
		t.Errorf("got tool name %v, want click_mouse", fn["name"])
	}
}

func TestOpenAIParams_MissingModel(t *testing.T) {
	if _, err := openAIParams(&ToolsData{}); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestAnthropicMessages(t *testing.T) {
	call1 := protocol.ToolCall{ID: "toolu_1", Name: "get_mouse_position", Arguments: "{}"}
	call2 := protocol.ToolCall{ID: "toolu_2", Name: "get_screen_size", Arguments: ""}
	msgs := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "system prompt"),
		protocol.NewMessage(protocol.RoleUser, "where is the pointer?"),
		{Role: protocol.RoleAssistant, Content: "Checking.", ToolCalls: []protocol.ToolCall{call1, call2}},
		protocol.NewToolResult(call1, "(10, 20)"),
		protocol.NewToolResult(call2, "1920 x 1080"),
		protocol.NewMessage(protocol.RoleAssistant, "At (10, 20)."),
	}

	got, system, err := anthropicMessages(msgs)
	if err != nil {
		t.Fatalf("anthropicMessages failed: %v", err)
	}

	if len(system) != 1 || system[0].Text != "system prompt" {
		t.Errorf("got system %v, want one block", system)
	}

	if len(got) != 4 {
		t.Fatalf("got %d messages, want 4", len(got))
	}

	wantRoles := []anthropic.MessageParamRole{
		anthropic.MessageParamRoleUser,
		anthropic.MessageParamRoleAssistant,
		anthropic.MessageParamRoleUser,
		anthropic.MessageParamRoleAssistant,
	}
	for i, role := range wantRoles {
		if got[i].Role != role {
			t.Errorf("message %d: got role %q, want %q", i, got[i].Role, role)
		}
	}

	if len(got[1].Content) != 3 {
		t.Errorf("assistant turn: got %d blocks, want text plus 2 tool_use", len(got[1].Content))
	}
	if len(got[2].Content) != 2 {
		t.Errorf("tool results should fold into one user turn, got %d blocks", len(got[2].Content))
	}

	blocks := roundTrip(t, got[2].Content)
	for i, block := range blocks {
		if block["type"] != "tool_result" {
			t.Errorf("block %d: got type %v, want tool_result", i, block["type"])
		}
	}
	if blocks[1]["tool_use_id"] != "toolu_2" {
		t.Errorf("got tool_use_id %v, want toolu_2", blocks[1]["tool_use_id"])
	}
}

func TestAnthropicParams(t *testing.T) {
	params, err := anthropicParams(&ToolsData{
		Model:    "claude-sonnet-4-5",
		Messages: diskConversation(),
		Tools:    []protocol.Tool{screenTool()},
	})
	if err != nil {
		t.Fatalf("anthropicParams failed: %v", err)
	}

	if params.MaxTokens != DefaultAnthropicMaxTokens {
		t.Errorf("got max tokens %d, want %d", params.MaxTokens, DefaultAnthropicMaxTokens)
	}
	if len(params.Tools) != 1 || params.Tools[0].OfTool == nil || params.Tools[0].OfTool.Name != "click_mouse" {
		t.Errorf("unexpected tools %+v", params.Tools)
	}

	params, err = anthropicParams(&ToolsData{
		Model:   "claude-sonnet-4-5",
		Options: map[string]any{"max_tokens": 512},
	})
	if err != nil {
		t.Fatalf("anthropicParams failed: %v", err)
	}
	if params.MaxTokens != 512 {
		t.Errorf("got max tokens %d, want 512", params.MaxTokens)
	}
}

func TestAnthropicToolCalls(t *testing.T) {
	raw := `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-sonnet-4-5",
		"content": [
			{"type": "text", "text": "Opening it."},
			{"type": "tool_use", "id": "toolu_9", "name": "open_windows_tool", "input": {"tool_name": "taskmgr"}}
		]
	}`

	var msg anthropic.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	got := anthropicToolCalls(msg.Content)
	if len(got) != 1 {
		t.Fatalf("got %d calls, want 1", len(got))
	}
	if got[0].ID != "toolu_9" || got[0].Name != "open_windows_tool" {
		t.Errorf("unexpected call %+v", got[0])
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(got[0].Arguments), &args); err != nil {
		t.Fatalf("arguments are not JSON: %v", err)
	}
	if args["tool_name"] != "taskmgr" {
		t.Errorf("got args %v", args)
	}
}
