package workers

import (
	"context"
	"log/slog"
	"time"

	"pairchat/contract"
	"pairchat/domain/event"
	"pairchat/hub"
)

// EventFanout drains the asynchronous event channel (presence mutations,
// sweeper transitions) into the delivery hub and mirrors every event to
// the permanent sinks. Best effort: it is an observability and side-effect
// path, not a broker.
type EventFanout struct {
	log         *slog.Logger
	hub         *hub.Hub
	events      <-chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, h *hub.Hub, events <-chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{log: log, hub: h, events: events, sinkTimeout: sinkTimeout}
}

func (w *EventFanout) Add(sinks ...contract.EventSink) *EventFanout {
	w.sinks = append(w.sinks, sinks...)
	return w
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt, ok := <-w.events:
			if !ok {
				return nil
			}
			w.Fanout(ctx, evt)
		}
	}
}

// Fanout delivers one event to the hub and every sink. A misbehaving sink
// is bounded by sinkTimeout so it cannot stall the channel drain.
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	w.hub.Publish(evt)

	for _, sink := range w.sinks {
		sinkCtx := ctx
		cancel := func() {}
		if w.sinkTimeout > 0 {
			sinkCtx, cancel = context.WithTimeout(ctx, w.sinkTimeout)
		}
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("sink rejected event", "error", err)
		}
		cancel()
	}
}
