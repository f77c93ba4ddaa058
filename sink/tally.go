// Package sink holds permanent in-process event consumers attached to the
// fanout worker, next to the per-connection subscriptions of the hub.
package sink

import (
	"context"
	"sync"

	"pairchat/domain/event"
)

// Tally counts delivered events per kind. Surfaced on the health endpoint
// as a cheap liveness signal for the event pipeline.
type Tally struct {
	mu     sync.Mutex
	counts map[string]uint64
}

func NewTally() *Tally {
	return &Tally{counts: make(map[string]uint64)}
}

func (t *Tally) Consume(_ context.Context, e event.DomainEvent) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[kind(e)]++
	return nil
}

// Snapshot returns a copy of the per-kind counters.
func (t *Tally) Snapshot() map[string]uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]uint64, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}

func kind(e event.DomainEvent) string {
	switch e.(type) {
	case event.MessageAppended:
		return "message_appended"
	case event.MessagesSeen:
		return "messages_seen"
	case event.ChatListUpdated:
		return "chat_list_updated"
	case event.PresenceChanged:
		return "presence_changed"
	}
	return "unknown"
}
