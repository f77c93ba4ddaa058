// Package hub bridges durable writes and presence changes to live
// subscriber connections. It provides per-subject fan-out with a bounded
// queue per subscription; it is not a message broker and offers no
// durability or retries.
package hub

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"pairchat/domain/event"
)

const DefaultQueueSize = 256

type Hub struct {
	mu        sync.RWMutex
	subs      map[event.Subject]map[uuid.UUID]*Subscription
	queueSize int
	log       *slog.Logger
}

func New(log *slog.Logger, queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Hub{
		subs:      make(map[event.Subject]map[uuid.UUID]*Subscription),
		queueSize: queueSize,
		log:       log,
	}
}

// NewSubscription creates a Connecting subscription that does not yet
// receive publishes. The caller snapshots current state, then Activates.
func (h *Hub) NewSubscription(subject event.Subject) *Subscription {
	return newSubscription(h, subject, h.queueSize)
}

// Activate registers the subscription for live delivery. Publishes
// committed after Activate returns are guaranteed to reach the queue.
func (h *Hub) Activate(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s.activate()
	bySubject, ok := h.subs[s.subject]
	if !ok {
		bySubject = make(map[uuid.UUID]*Subscription)
		h.subs[s.subject] = bySubject
	}
	bySubject[s.ID] = s
}

// Subscribe is NewSubscription followed by Activate, for subjects whose
// events carry absolute state and need no snapshot/attach coordination.
func (h *Hub) Subscribe(subject event.Subject) *Subscription {
	s := h.NewSubscription(subject)
	h.Activate(s)
	return s
}

// Publish enqueues the event to every Active subscription of its subject.
// It never blocks: a subscription whose queue is full is dropped with
// ErrOverflow and detached.
func (h *Hub) Publish(e event.DomainEvent) {
	subject := e.Subject()

	h.mu.RLock()
	targets := make([]*Subscription, 0, len(h.subs[subject]))
	for _, s := range h.subs[subject] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if !s.enqueue(e) {
			h.detach(s)
			h.log.Warn("subscription dropped",
				"subscription_id", s.ID,
				"subject_kind", subject.Kind,
				"subject_id", subject.ID,
				"reason", s.Err())
		}
	}
}

// SubscriberCount reports active subscriptions for a subject.
func (h *Hub) SubscriberCount(subject event.Subject) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[subject])
}

func (h *Hub) detach(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	bySubject, ok := h.subs[s.subject]
	if !ok {
		return
	}
	delete(bySubject, s.ID)
	if len(bySubject) == 0 {
		delete(h.subs, s.subject)
	}
}
