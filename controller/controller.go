// Package controller runs the interactive request/response loop over one
// long-lived conversation. It owns the current Context and the Message Log:
// every ResetInterval completed turns, and after a timed out turn, the
// Context is replaced by a new one seeded with the last KeepEntries log
// entries.
//
//	c := controller.New(k, cfg.Session, controller.WithLevel(level))
//	err := c.Run(ctx, os.Stdin)
package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"
	"strings"
	"sync/atomic"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/core/response"
	"github.com/tailored-agentic-units/deskagent/memory"
	"github.com/tailored-agentic-units/deskagent/observability"
	"github.com/tailored-agentic-units/deskagent/session"
)

const (
	greeting = "Welcome to the computer operation expert assistant!"
	usage    = "Ask anything about operating your computer. Type 'exit' or 'quit' to leave, /help for commands."
	goodbye  = "Thanks for using the assistant, goodbye!"

	traceLimit = 200
)

var exitKeywords = []string{"exit", "quit", "退出", "结束"}

// Runner runs one turn against a Context. *kernel.Kernel implements it.
type Runner interface {
	Stream(ctx context.Context, sess session.Session, prompt string) *response.Stream
	Tools() []protocol.Tool
}

// Option configures a Controller.
type Option func(*Controller)

// WithOutput sets the console writer. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *Controller) { c.out = w }
}

// WithLevel shares the level of the process logger so that toggling debug
// mode affects every slog call site.
func WithLevel(level *slog.LevelVar) Option {
	return func(c *Controller) { c.level = level }
}

// WithLogger sets the logger for diagnostics. The default is slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithObserver sets the observer for controller events.
func WithObserver(o observability.Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithTranscripts archives every discarded Context to the transcripts
// namespace of cache.
func WithTranscripts(cache *memory.Cache) Option {
	return func(c *Controller) { c.transcripts = cache }
}

// WithDebug sets the initial debug mode.
func WithDebug(on bool) Option {
	return func(c *Controller) { c.debug.Store(on) }
}

// Controller is the Session Controller. A Controller serves one Run or Ask
// at a time; only State and Debug may be called concurrently with it.
type Controller struct {
	runner      Runner
	cfg         session.Config
	out         io.Writer
	level       *slog.LevelVar
	logger      *slog.Logger
	observer    observability.Observer
	transcripts *memory.Cache

	state atomic.Int32
	debug atomic.Bool

	sess  session.Session
	log   session.Log
	turns int
}

// New creates a Controller that dispatches turns to runner. Zero fields of
// cfg take the session defaults.
func New(runner Runner, cfg session.Config, opts ...Option) *Controller {
	merged := session.DefaultConfig()
	merged.Merge(&cfg)

	c := &Controller{
		runner:   runner,
		cfg:      merged,
		out:      os.Stdout,
		observer: observability.NoOpObserver{},
	}
	c.state.Store(int32(StateResetting))

	for _, opt := range opts {
		opt(c)
	}

	if c.level == nil {
		c.level = new(slog.LevelVar)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	c.SetDebug(c.debug.Load())

	return c
}

// State returns the current phase of the loop.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Debug reports whether debug mode is on.
func (c *Controller) Debug() bool {
	return c.debug.Load()
}

// SetDebug switches debug mode and the shared log level.
func (c *Controller) SetDebug(on bool) {
	c.debug.Store(on)
	if on {
		c.level.Set(slog.LevelDebug)
	} else {
		c.level.Set(slog.LevelInfo)
	}
}

// History returns a copy of the Message Log.
func (c *Controller) History() []protocol.Message {
	return c.log.Entries()
}

// Run reads lines from in until an exit keyword, end of input, or the
// cancellation of ctx. Input handling failures never end the loop. The
// returned error is non-nil only when the Context cannot be created or
// reading in fails with something other than EOF.
func (c *Controller) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(c.out, titleStyle.Render(greeting))
	fmt.Fprintln(c.out, dimStyle.Render(usage))

	if err := c.reset(ctx, "startup"); err != nil {
		return err
	}

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines, readErr := readLines(readCtx, in)

	for {
		c.setState(StateAwaitingInput)
		fmt.Fprint(c.out, "\n"+promptStyle.Render("You:")+" ")

		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)
			c.terminate(ctx, "interrupt")
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(c.out)
				c.terminate(ctx, "eof")
				return <-readErr
			}
			if c.handle(ctx, line) {
				return nil
			}
		}
	}
}

// Ask runs a single turn for prompt and returns its error, if any.
func (c *Controller) Ask(ctx context.Context, prompt string) error {
	if c.sess == nil {
		if err := c.reset(ctx, "startup"); err != nil {
			return err
		}
	}
	return c.dispatch(ctx, strings.TrimSpace(prompt))
}

func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}

// handle processes one input line and reports whether the loop should end.
func (c *Controller) handle(ctx context.Context, line string) (exit bool) {
	defer func() {
		if r := recover(); r != nil {
			c.recovered(ctx, r)
			exit = false
		}
	}()

	input := strings.TrimSpace(line)
	switch {
	case input == "":
		return false
	case isExitKeyword(input):
		c.terminate(ctx, "exit")
		return true
	case isCommand(input):
		c.command(ctx, input)
		return false
	}

	c.dispatch(ctx, input)
	return false
}

func isExitKeyword(input string) bool {
	for _, kw := range exitKeywords {
		if strings.EqualFold(input, kw) {
			return true
		}
	}
	return false
}

// isCommand matches "/name ..." but not input that starts with a path.
func isCommand(input string) bool {
	first := strings.Fields(input)[0]
	return len(first) > 1 && first[0] == '/' && !strings.Contains(first[1:], "/")
}

// dispatch runs one turn under the turn timeout and streams its reply.
func (c *Controller) dispatch(ctx context.Context, input string) error {
	if c.turns >= c.cfg.ResetInterval {
		if err := c.reset(ctx, "interval"); err != nil {
			c.printError(err.Error())
			return err
		}
	}

	c.log.Append(protocol.RoleUser, input)
	c.setState(StateDispatching)
	c.observe(ctx, EventTurnStart, observability.LevelInfo, map[string]any{
		"session": c.sess.ID(),
		"turn":    c.turns + 1,
	})

	turnCtx, cancel := context.WithTimeout(ctx, c.cfg.TurnTimeout)
	defer cancel()

	s := c.runner.Stream(turnCtx, c.sess, input)
	defer s.Close()

	var reply strings.Builder
	var other int
	lineStart := true
	for s.Next() {
		if c.State() != StateStreaming {
			c.setState(StateStreaming)
			fmt.Fprint(c.out, assistantStyle.Render("Agent:")+" ")
			lineStart = false
		}

		ev := s.Current()
		if ev.Kind == response.KindText {
			reply.WriteString(ev.Delta)
			fmt.Fprint(c.out, ev.Delta)
			if ev.Delta != "" {
				lineStart = strings.HasSuffix(ev.Delta, "\n")
			}
			continue
		}

		other++
		if c.Debug() {
			if !lineStart {
				fmt.Fprintln(c.out)
			}
			fmt.Fprintln(c.out, dimStyle.Render(traceEvent(ev)))
			lineStart = true
		}
	}
	if !lineStart {
		fmt.Fprintln(c.out)
	}

	err := s.Err()
	switch {
	case err == nil:
	case ctx.Err() != nil:
		// Interrupted; the loop terminates on its next iteration.
		return err
	case errors.Is(turnCtx.Err(), context.DeadlineExceeded):
		timeout := fmt.Errorf("%w after %s", ErrTurnTimeout, c.cfg.TurnTimeout)
		c.printError(fmt.Sprintf("Error: no reply within %s. Starting a new conversation context.", c.cfg.TurnTimeout))
		c.logger.Debug("turn abandoned", "error", err, "timeout", c.cfg.TurnTimeout)
		c.observe(ctx, EventTurnTimeout, observability.LevelWarning, map[string]any{
			"session": c.sess.ID(),
			"timeout": c.cfg.TurnTimeout.String(),
		})
		if rerr := c.reset(ctx, "timeout"); rerr != nil {
			c.printError(rerr.Error())
		}
		return timeout
	default:
		c.printError(fmt.Sprintf("Error: %v", err))
		c.logger.Debug("stream failed", "error", err)
		c.observe(ctx, EventStreamError, observability.LevelError, map[string]any{
			"session": c.sess.ID(),
			"error":   err.Error(),
		})
	}

	if reply.Len() > 0 {
		c.log.Append(protocol.RoleAssistant, reply.String())
	}
	c.turns++

	c.observe(ctx, EventTurnComplete, observability.LevelInfo, map[string]any{
		"session":         c.sess.ID(),
		"turn":            c.turns,
		"response_length": reply.Len(),
		"other_events":    other,
	})

	return err
}

func traceEvent(ev response.Event) string {
	switch ev.Kind {
	case response.KindToolCall:
		return fmt.Sprintf("  -> %s(%s)", ev.ToolCall.Name, ev.ToolCall.RawArguments())
	case response.KindToolResult:
		result := ev.Result
		if len(result) > traceLimit {
			result = result[:traceLimit] + "..."
		}
		status := "ok"
		if ev.IsError {
			status = "error"
		}
		return fmt.Sprintf("  <- %s [%s] %s", ev.ToolCall.Name, status, result)
	default:
		return fmt.Sprintf("  %s", ev.Kind)
	}
}

// reset archives the current Context and replaces it with one seeded from
// the trimmed Message Log.
func (c *Controller) reset(ctx context.Context, reason string) error {
	c.setState(StateResetting)
	c.archive(ctx)

	c.log.Trim(c.cfg.KeepEntries)
	seed := c.log.Entries()

	sess, err := session.New(&c.cfg, seed...)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	c.sess = sess
	c.turns = 0

	c.logger.Debug("context reset", "reason", reason, "session", sess.ID(), "seeded", len(seed))
	c.observe(ctx, EventReset, observability.LevelVerbose, map[string]any{
		"reason":  reason,
		"session": sess.ID(),
		"seeded":  len(seed),
	})
	return nil
}

// terminate archives and releases the Context.
func (c *Controller) terminate(ctx context.Context, reason string) {
	c.archive(ctx)
	id := ""
	if c.sess != nil {
		id = c.sess.ID()
	}
	c.sess = nil
	c.setState(StateTerminated)

	fmt.Fprintln(c.out, titleStyle.Render(goodbye))
	c.observe(ctx, EventTerminate, observability.LevelInfo, map[string]any{
		"reason":  reason,
		"session": id,
	})
}

func (c *Controller) recovered(ctx context.Context, r any) {
	c.printError(fmt.Sprintf("Error: %v", r))

	attrs := []any{"panic", fmt.Sprint(r)}
	if c.Debug() {
		attrs = append(attrs, "stack", string(debug.Stack()))
	}
	c.logger.Error("input handling failed", attrs...)

	c.observe(ctx, EventRecovered, observability.LevelError, map[string]any{
		"panic": fmt.Sprint(r),
	})
}

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
}

func (c *Controller) printError(msg string) {
	fmt.Fprintln(c.out, errorStyle.Render(msg))
}

func (c *Controller) printNotice(msg string) {
	fmt.Fprintln(c.out, noticeStyle.Render(msg))
}

func (c *Controller) observe(ctx context.Context, typ observability.EventType, level observability.Level, data map[string]any) {
	c.observer.OnEvent(ctx, observability.NewEvent(typ, level, "controller", data))
}
