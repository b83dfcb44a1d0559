package providers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/deskagent/agent/providers"
	"github.com/tailored-agentic-units/deskagent/core/config"
	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/core/response"
)

type collected struct {
	text  string
	calls []protocol.ToolCall
	kinds []response.Kind
}

func collect(t *testing.T, s *response.Stream) collected {
	t.Helper()
	defer s.Close()

	var c collected
	for s.Next() {
		ev := s.Current()
		c.kinds = append(c.kinds, ev.Kind)
		switch ev.Kind {
		case response.KindText:
			c.text += ev.Delta
		case response.KindToolCall:
			c.calls = append(c.calls, *ev.ToolCall)
		}
	}
	if err := s.Err(); err != nil {
		t.Fatalf("stream failed: %v", err)
	}
	return c
}

func request() *providers.ToolsData {
	return &providers.ToolsData{
		Model: "qwen-max",
		Messages: []protocol.Message{
			protocol.NewMessage(protocol.RoleUser, "How much space is left on C?"),
		},
		Tools: []protocol.Tool{{
			Name:        "check_disk_space",
			Description: "Report drive usage",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{"drive": map[string]any{"type": "string"}},
			},
		}},
		Options: map[string]any{"temperature": 0.1},
	}
}

func TestOpenAI_Stream(t *testing.T) {
	chunks := []string{
		`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"qwen-max","choices":[{"index":0,"delta":{"role":"assistant","content":"Checking "},"finish_reason":null}]}`,
		`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"qwen-max","choices":[{"index":0,"delta":{"content":"disk."},"finish_reason":null}]}`,
		`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"qwen-max","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_abc","type":"function","function":{"name":"check_disk_space","arguments":""}}]},"finish_reason":null}]}`,
		`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"qwen-max","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"drive\":\"C\"}"}}]},"finish_reason":null}]}`,
		`{"id":"c1","object":"chat.completion.chunk","created":1,"model":"qwen-max","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}`,
	}

	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	p, err := providers.New(&config.ProviderConfig{Name: "openai", BaseURL: server.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := collect(t, p.Stream(context.Background(), request()))

	if got.text != "Checking disk." {
		t.Errorf("got text %q, want %q", got.text, "Checking disk.")
	}
	if len(got.calls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(got.calls))
	}
	if got.calls[0].ID != "call_abc" || got.calls[0].Name != "check_disk_space" {
		t.Errorf("unexpected call %+v", got.calls[0])
	}
	if got.calls[0].Arguments != `{"drive":"C"}` {
		t.Errorf("got arguments %q", got.calls[0].Arguments)
	}
	if last := got.kinds[len(got.kinds)-1]; last != response.KindToolCall {
		t.Errorf("tool calls should follow text, last kind %q", last)
	}

	if body["stream"] != true {
		t.Errorf("request should stream, got %v", body["stream"])
	}
	if tools, _ := body["tools"].([]any); len(tools) != 1 {
		t.Errorf("got tools %v, want 1", body["tools"])
	}
}

func TestOllama_Stream(t *testing.T) {
	lines := []string{
		`{"model":"qwen3:8b","message":{"role":"assistant","content":"Check"},"done":false}`,
		`{"model":"qwen3:8b","message":{"role":"assistant","content":"ing."},"done":false}`,
		`{"model":"qwen3:8b","message":{"role":"assistant","content":"","tool_calls":[{"function":{"name":"check_disk_space","arguments":{"drive":"C"}}}]},"done":false}`,
		`{"model":"qwen3:8b","message":{"role":"assistant","content":""},"done":true,"done_reason":"stop"}`,
	}

	var path string
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)

		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprint(w, strings.Join(lines, "\n")+"\n")
	}))
	defer server.Close()

	p, err := providers.New(&config.ProviderConfig{Name: "ollama", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	data := request()
	data.Model = "qwen3:8b"
	got := collect(t, p.Stream(context.Background(), data))

	if path != "/api/chat" {
		t.Errorf("got path %q, want /api/chat", path)
	}
	if got.text != "Checking." {
		t.Errorf("got text %q, want %q", got.text, "Checking.")
	}
	if len(got.calls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(got.calls))
	}
	if got.calls[0].Name != "check_disk_space" || got.calls[0].Arguments != `{"drive":"C"}` {
		t.Errorf("unexpected call %+v", got.calls[0])
	}

	opts, _ := body["options"].(map[string]any)
	if opts["temperature"] != 0.1 {
		t.Errorf("got options %v, want temperature 0.1", body["options"])
	}
}

func TestOllama_StreamServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":"model 'missing' not found"}`)
	}))
	defer server.Close()

	p, err := providers.New(&config.ProviderConfig{Name: "ollama", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s := p.Stream(context.Background(), request())
	defer s.Close()
	for s.Next() {
	}
	if s.Err() == nil {
		t.Error("expected stream error for failed request")
	}
}
