package response

import (
	"context"
	"sync"
)

// Producer writes events into a stream through emit. It must return when
// emit returns an error, which happens once the stream's context is done.
type Producer func(ctx context.Context, emit func(Event) error) error

// Stream is a single-consumer, forward-only sequence of events. It follows
// the Next/Current/Err iteration style of SDK streams:
//
//	s := agent.Stream(ctx, messages, tools)
//	defer s.Close()
//	for s.Next() {
//	    ev := s.Current()
//	}
//	if err := s.Err(); err != nil { ... }
//
// A Stream is not restartable and must not be read from multiple goroutines.
type Stream struct {
	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	cur    Event
	err    error
	done   chan struct{}
	once   sync.Once
}

// NewStream starts produce in its own goroutine and returns the stream that
// receives its events. Cancelling ctx, or calling Close, stops the producer.
func NewStream(ctx context.Context, produce Producer) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		events: make(chan Event),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(s.events)
		emit := func(ev Event) error {
			select {
			case s.events <- ev:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err := produce(ctx, emit)
		if err == nil && ctx.Err() != nil {
			err = context.Cause(ctx)
		}
		s.err = err
		close(s.done)
		cancel()
	}()

	return s
}

// Failed returns an already exhausted stream whose Err is err.
func Failed(err error) *Stream {
	return NewStream(context.Background(), func(context.Context, func(Event) error) error {
		return err
	})
}

// Next advances to the next event. It returns false when the stream is
// exhausted, has failed, or its context is done; Err distinguishes these.
// Next does not wait for a producer that ignores its context.
func (s *Stream) Next() bool {
	select {
	case ev, ok := <-s.events:
		if !ok {
			return false
		}
		s.cur = ev
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Current returns the event read by the last successful Next.
func (s *Stream) Current() Event {
	return s.cur
}

// Err returns the producer's error once the stream is exhausted, or the
// context's cause once the stream was abandoned.
func (s *Stream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
	}
	if s.ctx.Err() != nil {
		return context.Cause(s.ctx)
	}
	return nil
}

// Close stops the producer and discards any remaining events. It returns
// without waiting for the producer to exit.
func (s *Stream) Close() {
	s.once.Do(func() {
		s.cancel()
		go func() {
			for range s.events {
			}
		}()
	})
}
