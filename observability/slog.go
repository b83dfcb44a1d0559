package observability

import (
	"context"
	"log/slog"
	"slices"
)

// SlogObserver writes each event as one log record: the event type is the
// message, Source becomes the "source" attribute and Data keys follow in
// sorted order.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver returns an observer writing to logger. A nil logger is
// looked up as slog.Default on every event, so the observer follows the
// default the CLI installs after package init.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	level := event.Level.SlogLevel()
	if !logger.Enabled(ctx, level) {
		return
	}

	keys := make([]string, 0, len(event.Data))
	for k := range event.Data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, event.Data[k]))
	}
	logger.LogAttrs(ctx, level, string(event.Type), attrs...)
}
