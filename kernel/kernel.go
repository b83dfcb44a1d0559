// Package kernel implements one conversational turn: the tool-calling loop
// that sends the Context to the agent, runs the tools it asks for, feeds the
// results back, and repeats until the agent answers in plain text.
//
// The kernel initializes from configuration via New. Functional options
// supply or override any subsystem, which is how tests inject mocks.
//
//	k, err := kernel.New(cfg, kernel.WithDefinition(expert.Definition()))
//	s := k.Stream(ctx, sess, "How much disk space is left on C:?")
//	defer s.Close()
//	for s.Next() { ... }
package kernel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/deskagent/agent"
	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/core/response"
	"github.com/tailored-agentic-units/deskagent/memory"
	"github.com/tailored-agentic-units/deskagent/observability"
	"github.com/tailored-agentic-units/deskagent/session"
	"github.com/tailored-agentic-units/deskagent/tools"
)

// Result holds the outcome of a kernel turn.
type Result struct {
	Response   string           // Final text response from the agent.
	Iterations int              // Number of loop cycles completed.
	ToolCalls  []ToolCallRecord // Log of all tool invocations.
}

type ToolCallRecord struct {
	protocol.ToolCall
	Iteration int    // Loop cycle in which the call occurred.
	Result    string // Tool execution output.
	IsError   bool   // Whether execution returned an error.
}

// ToolExecutor abstracts tool listing and execution for testability.
// The default implementation delegates to the global tools package.
type ToolExecutor interface {
	List() []protocol.Tool
	Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error)
}

type globalToolExecutor struct{}

func (globalToolExecutor) List() []protocol.Tool {
	return tools.List()
}

func (globalToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (tools.Result, error) {
	return tools.Execute(ctx, name, args)
}

// Option configures a Kernel. Subsystems not supplied by an option are
// created from configuration.
type Option func(*Kernel)

// WithAgent supplies the agent instead of creating one from Config.Agent.
func WithAgent(a agent.Agent) Option {
	return func(k *Kernel) { k.agent = a }
}

// WithDefinition hosts def: only its tools are offered, and its system
// prompt is used unless Config.SystemPrompt is set.
func WithDefinition(def agent.Definition) Option {
	return func(k *Kernel) { k.definition = &def }
}

// WithToolExecutor overrides the default global tool executor.
func WithToolExecutor(e ToolExecutor) Option {
	return func(k *Kernel) { k.tools = e }
}

// WithMemoryStore overrides the config-created memory store. A nil store
// disables memory injection.
func WithMemoryStore(s memory.Store) Option {
	return func(k *Kernel) {
		k.store = s
		k.storeSet = true
	}
}

// WithObserver overrides the configured observer.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// Kernel runs turns against a caller-owned Context.
type Kernel struct {
	agent         agent.Agent
	definition    *agent.Definition
	store         memory.Store
	storeSet      bool
	tools         ToolExecutor
	observer      observability.Observer
	maxIterations int
	systemPrompt  string
}

// New creates a Kernel from configuration.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	k := &Kernel{
		maxIterations: cfg.MaxIterations,
		systemPrompt:  cfg.SystemPrompt,
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.agent == nil {
		a, err := agent.New(&cfg.Agent)
		if err != nil {
			return nil, fmt.Errorf("failed to create agent: %w", err)
		}
		k.agent = a
	}

	if !k.storeSet {
		store, err := memory.NewStore(&cfg.Memory)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory store: %w", err)
		}
		k.store = store
	}

	if k.observer == nil {
		observer, err := cfg.observer()
		if err != nil {
			return nil, err
		}
		k.observer = observer
	}

	if k.tools == nil {
		k.tools = globalToolExecutor{}
	}

	if k.systemPrompt == "" && k.definition != nil {
		k.systemPrompt = k.definition.SystemPrompt
	}

	return k, nil
}

// Agent returns the agent the kernel dispatches to.
func (k *Kernel) Agent() agent.Agent {
	return k.agent
}

// Tools returns the tools offered to the agent, in definition order when a
// definition is hosted. Definition tools that are not registered are
// skipped.
func (k *Kernel) Tools() []protocol.Tool {
	all := k.tools.List()
	if k.definition == nil {
		return all
	}

	byName := make(map[string]protocol.Tool, len(all))
	for _, t := range all {
		byName[t.Name] = t
	}

	offered := make([]protocol.Tool, 0, len(k.definition.Tools))
	for _, name := range k.definition.Tools {
		if t, ok := byName[name]; ok {
			offered = append(offered, t)
		}
	}
	return offered
}

// Stream runs one turn for prompt against sess and streams its events:
// text deltas as the agent produces them, each requested tool call, and
// each tool result. The stream's error is nil when the agent answered, and
// wraps the context error when ctx ends first.
func (k *Kernel) Stream(ctx context.Context, sess session.Session, prompt string) *response.Stream {
	return response.NewStream(ctx, func(ctx context.Context, emit func(response.Event) error) error {
		_, err := k.run(ctx, sess, prompt, emit)
		return err
	})
}

// Run executes one turn synchronously and returns its Result. When
// maxIterations is 0, the loop runs until the agent produces a final
// response or the context is cancelled. Returns ErrMaxIterations if a
// non-zero iteration budget is exhausted.
func (k *Kernel) Run(ctx context.Context, sess session.Session, prompt string) (*Result, error) {
	return k.run(ctx, sess, prompt, func(response.Event) error {
		return ctx.Err()
	})
}

func (k *Kernel) run(ctx context.Context, sess session.Session, prompt string, emit func(response.Event) error) (*Result, error) {
	sess.AddMessage(protocol.NewMessage(protocol.RoleUser, prompt))

	result := &Result{}

	systemContent, err := k.buildSystemContent(ctx)
	if err != nil {
		return result, err
	}

	offered := k.Tools()

	k.observer.OnEvent(ctx, observability.NewEvent(EventRunStart, observability.LevelInfo, "kernel.Run", map[string]any{
		"session":        sess.ID(),
		"prompt_length":  len(prompt),
		"max_iterations": k.maxIterations,
		"tools":          len(offered),
	}))

	for iteration := 0; k.maxIterations == 0 || iteration < k.maxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		k.observer.OnEvent(ctx, observability.NewEvent(EventIterationStart, observability.LevelVerbose, "kernel.Run", map[string]any{
			"iteration": iteration + 1,
		}))

		content, calls, err := k.callAgent(ctx, k.buildMessages(sess, systemContent), offered, emit)
		if err != nil {
			k.observer.OnEvent(ctx, observability.NewEvent(EventError, observability.LevelError, "kernel.Run", map[string]any{
				"iteration": iteration + 1,
				"error":     err.Error(),
			}))
			return result, fmt.Errorf("agent call failed: %w", err)
		}

		if len(calls) == 0 {
			sess.AddMessage(protocol.NewMessage(protocol.RoleAssistant, content))
			result.Response = content
			result.Iterations = iteration + 1

			k.observer.OnEvent(ctx, observability.NewEvent(EventResponse, observability.LevelInfo, "kernel.Run", map[string]any{
				"iteration":       iteration + 1,
				"response_length": len(result.Response),
				"tool_calls":      len(result.ToolCalls),
			}))

			return result, nil
		}

		sess.AddMessage(protocol.Message{
			Role:      protocol.RoleAssistant,
			Content:   content,
			ToolCalls: calls,
		})

		for _, tc := range calls {
			k.observer.OnEvent(ctx, observability.NewEvent(EventToolCall, observability.LevelVerbose, "kernel.Run", map[string]any{
				"iteration": iteration + 1,
				"name":      tc.Name,
				"arguments": tc.Arguments,
			}))

			record := k.execute(ctx, tc)
			record.Iteration = iteration + 1
			sess.AddMessage(protocol.NewToolResult(tc, record.Result))

			k.observer.OnEvent(ctx, observability.NewEvent(EventToolComplete, observability.LevelVerbose, "kernel.Run", map[string]any{
				"iteration": iteration + 1,
				"name":      tc.Name,
				"error":     record.IsError,
			}))

			result.ToolCalls = append(result.ToolCalls, record)

			if err := emit(response.ToolResult(tc, record.Result, record.IsError)); err != nil {
				return result, err
			}
		}

		result.Iterations = iteration + 1
	}

	k.observer.OnEvent(ctx, observability.NewEvent(EventError, observability.LevelWarning, "kernel.Run", map[string]any{
		"error":      "max iterations reached",
		"iterations": k.maxIterations,
	}))

	return result, ErrMaxIterations
}

// callAgent streams one agent reply, forwarding text and tool call events,
// and returns the accumulated text and calls.
func (k *Kernel) callAgent(ctx context.Context, messages []protocol.Message, offered []protocol.Tool, emit func(response.Event) error) (string, []protocol.ToolCall, error) {
	s := k.agent.Stream(ctx, messages, offered)
	defer s.Close()

	var text strings.Builder
	var calls []protocol.ToolCall

	for s.Next() {
		ev := s.Current()
		switch ev.Kind {
		case response.KindText:
			text.WriteString(ev.Delta)
		case response.KindToolCall:
			if ev.ToolCall == nil {
				continue
			}
			calls = append(calls, *ev.ToolCall)
		default:
			continue
		}
		if err := emit(ev); err != nil {
			return "", nil, err
		}
	}

	if err := s.Err(); err != nil {
		return "", nil, err
	}
	return text.String(), calls, nil
}

func (k *Kernel) execute(ctx context.Context, tc protocol.ToolCall) ToolCallRecord {
	record := ToolCallRecord{ToolCall: tc}

	if k.definition != nil && !k.definition.HasTool(tc.Name) {
		record.Result = fmt.Sprintf("error: %s: %s", ErrToolNotOffered, tc.Name)
		record.IsError = true
		return record
	}

	toolResult, err := k.tools.Execute(ctx, tc.Name, tc.RawArguments())
	if err != nil {
		record.Result = fmt.Sprintf("error: %s", err)
		record.IsError = true
		return record
	}

	record.Result = toolResult.Content
	record.IsError = toolResult.IsError
	return record
}

func (k *Kernel) buildMessages(sess session.Session, systemContent string) []protocol.Message {
	sessionMsgs := sess.Messages()

	if systemContent == "" {
		return sessionMsgs
	}

	messages := make([]protocol.Message, 0, len(sessionMsgs)+1)
	messages = append(messages, protocol.NewMessage(protocol.RoleSystem, systemContent))
	messages = append(messages, sessionMsgs...)
	return messages
}

// buildSystemContent appends every document under the memory/ namespace to
// the system prompt. Reference documents and transcripts are not injected.
func (k *Kernel) buildSystemContent(ctx context.Context) (string, error) {
	content := k.systemPrompt

	if k.store == nil {
		return content, nil
	}

	entries, err := memory.Notes(ctx, k.store)
	if err != nil {
		return "", fmt.Errorf("failed to load memory notes: %w", err)
	}

	for _, entry := range entries {
		content += "\n\n" + string(entry.Value)
	}

	return content, nil
}
