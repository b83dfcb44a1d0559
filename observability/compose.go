package observability

import "context"

// NoOpObserver discards every event.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(context.Context, Event) {}

// Fanout returns an observer that delivers each event to every non-nil
// observer in order. With nothing to deliver to it returns NoOpObserver.
func Fanout(observers ...Observer) Observer {
	targets := make([]Observer, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			targets = append(targets, o)
		}
	}

	switch len(targets) {
	case 0:
		return NoOpObserver{}
	case 1:
		return targets[0]
	}
	return ObserverFunc(func(ctx context.Context, event Event) {
		for _, o := range targets {
			o.OnEvent(ctx, event)
		}
	})
}
