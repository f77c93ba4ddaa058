package hub

import (
	"sync"

	"github.com/google/uuid"

	"pairchat/domain/event"
	"pairchat/errors"
)

type State int32

const (
	Connecting State = iota
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Active:
		return "active"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Subscription is a live, cancellable event stream bound to one subject
// and one client connection. Its queue is bounded: if the consumer falls
// behind, the subscription is dropped with ErrOverflow and must be
// recreated, which yields a fresh full replay.
type Subscription struct {
	ID      uuid.UUID
	subject event.Subject

	mu    sync.Mutex
	state State
	err   error

	queue chan event.DomainEvent
	done  chan struct{}
	hub   *Hub
}

func newSubscription(h *Hub, subject event.Subject, capacity int) *Subscription {
	return &Subscription{
		ID:      uuid.New(),
		subject: subject,
		state:   Connecting,
		queue:   make(chan event.DomainEvent, capacity),
		done:    make(chan struct{}),
		hub:     h,
	}
}

func (s *Subscription) Subject() event.Subject { return s.subject }

// Events yields buffered and live events. The channel is never closed;
// select on Done to observe termination.
func (s *Subscription) Events() <-chan event.DomainEvent { return s.queue }

// Done is closed when the subscription reaches Closed.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Err reports why the subscription closed. ErrOverflow means the consumer
// fell behind and must resubscribe; nil means a plain Cancel.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cancel transitions to Closed and releases buffered events. Idempotent.
func (s *Subscription) Cancel() {
	if s.hub != nil {
		s.hub.detach(s)
	}
	s.close(nil)
}

// enqueue buffers an event without ever blocking the publisher. On a full
// queue the subscription is dropped so writers complete in bounded time.
func (s *Subscription) enqueue(e event.DomainEvent) bool {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	select {
	case s.queue <- e:
		return true
	default:
		s.close(errors.ErrOverflow)
		return false
	}
}

func (s *Subscription) activate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Connecting {
		s.state = Active
	}
}

func (s *Subscription) close(cause error) {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return
	}
	s.state = Closed
	s.err = cause
	s.mu.Unlock()

	close(s.done)
	// Release buffered events so a slow consumer doesn't pin them.
	for {
		select {
		case <-s.queue:
		default:
			return
		}
	}
}
