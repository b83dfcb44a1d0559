package response_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tailored-agentic-units/deskagent/core/protocol"
	"github.com/tailored-agentic-units/deskagent/core/response"
)

func TestStream_DeliversEventsInOrder(t *testing.T) {
	s := response.NewStream(context.Background(), func(ctx context.Context, emit func(response.Event) error) error {
		for _, d := range []string{"Open ", "Task ", "Manager"} {
			if err := emit(response.Text(d)); err != nil {
				return err
			}
		}
		return emit(response.Call(protocol.ToolCall{ID: "c1", Name: "open_windows_tool"}))
	})

	var text string
	var calls int
	for s.Next() {
		ev := s.Current()
		switch ev.Kind {
		case response.KindText:
			text += ev.Delta
		case response.KindToolCall:
			calls++
			if ev.ToolCall.Name != "open_windows_tool" {
				t.Errorf("got tool call %q, want open_windows_tool", ev.ToolCall.Name)
			}
		}
	}

	if err := s.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
	if text != "Open Task Manager" {
		t.Errorf("got text %q, want %q", text, "Open Task Manager")
	}
	if calls != 1 {
		t.Errorf("got %d tool calls, want 1", calls)
	}
}

func TestStream_ProducerError(t *testing.T) {
	want := errors.New("connection reset")
	s := response.NewStream(context.Background(), func(ctx context.Context, emit func(response.Event) error) error {
		if err := emit(response.Text("partial")); err != nil {
			return err
		}
		return want
	})

	n := 0
	for s.Next() {
		n++
	}
	if n != 1 {
		t.Errorf("got %d events, want 1", n)
	}
	if !errors.Is(s.Err(), want) {
		t.Errorf("Err() = %v, want %v", s.Err(), want)
	}
}

func TestStream_Failed(t *testing.T) {
	want := errors.New("bad credentials")
	s := response.Failed(want)

	if s.Next() {
		t.Fatal("Next() on failed stream returned true")
	}
	if !errors.Is(s.Err(), want) {
		t.Errorf("Err() = %v, want %v", s.Err(), want)
	}
}

func TestStream_DeadlineStopsProducer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	stopped := make(chan struct{})
	s := response.NewStream(ctx, func(ctx context.Context, emit func(response.Event) error) error {
		defer close(stopped)
		<-ctx.Done()
		return ctx.Err()
	})

	if s.Next() {
		t.Fatal("Next() returned an event from a blocked producer")
	}
	if !errors.Is(s.Err(), context.DeadlineExceeded) {
		t.Errorf("Err() = %v, want context.DeadlineExceeded", s.Err())
	}

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("producer did not stop after deadline")
	}
}

func TestStream_CloseUnblocksProducer(t *testing.T) {
	stopped := make(chan struct{})
	s := response.NewStream(context.Background(), func(ctx context.Context, emit func(response.Event) error) error {
		defer close(stopped)
		for {
			if err := emit(response.Text("x")); err != nil {
				return err
			}
		}
	})

	if !s.Next() {
		t.Fatal("expected at least one event")
	}
	s.Close()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("producer did not stop after Close")
	}
}

func TestStream_AbandonsProducerIgnoringContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	defer close(release)
	s := response.NewStream(ctx, func(context.Context, func(response.Event) error) error {
		<-release
		return nil
	})

	start := time.Now()
	if s.Next() {
		t.Fatal("Next() returned an event from a stuck producer")
	}
	s.Close()
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("Next and Close took %s, want them bounded by the deadline", elapsed)
	}
	if !errors.Is(s.Err(), context.DeadlineExceeded) {
		t.Errorf("Err() = %v, want context.DeadlineExceeded", s.Err())
	}
}

func TestEventConstructors(t *testing.T) {
	tc := protocol.ToolCall{ID: "c1", Name: "delete_file"}

	res := response.ToolResult(tc, "File not found: a.txt", true)
	if res.Kind != response.KindToolResult {
		t.Errorf("got kind %q, want %q", res.Kind, response.KindToolResult)
	}
	if !res.IsError {
		t.Error("IsError = false, want true")
	}
	if res.ToolCall == nil || res.ToolCall.ID != "c1" {
		t.Errorf("ToolCall = %+v, want id c1", res.ToolCall)
	}

	if ev := response.Text("hi"); ev.Kind != response.KindText || ev.Delta != "hi" {
		t.Errorf("Text() = %+v", ev)
	}
}
