package events

import (
	"context"

	"github.com/svodka-hq/svodka-news-bot/internal/logger"
)

// Fanout dispatches events to all configured sinks. Sink failures are logged
// and never propagate to the pipeline: event delivery is best effort.
type Fanout struct {
	sinks []Sink
}

// NewFanout builds a dispatcher over the given sinks, skipping nils.
func NewFanout(sinks []Sink) *Fanout {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Fanout{sinks: cp}
}

// Emit forwards the event to every sink and returns the success count.
func (f *Fanout) Emit(ctx context.Context, evt Event) int {
	if f == nil || len(f.sinks) == 0 {
		return 0
	}

	delivered := 0
	for _, s := range f.sinks {
		if err := s.Deliver(ctx, evt); err != nil {
			logger.WarnObj("event sink delivery failed", "sink", map[string]any{
				"sink":  s.ID(),
				"kind":  evt.Kind,
				"error": err.Error(),
			})
			continue
		}
		delivered++
	}
	return delivered
}

// Size returns the number of active sinks.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.sinks)
}
