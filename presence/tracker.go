// Package presence tracks ephemeral per-user status, decoupled from
// message durability. State lives in memory only; a restart resetting
// everyone to offline is acceptable.
package presence

import (
	"log/slog"
	"sync"
	"time"

	"pairchat/domain"
	"pairchat/domain/event"
)

const DefaultTimeout = 30 * time.Second

// Tracker holds online/typing/last-seen state with last-write-wins
// semantics per user. A user whose last heartbeat is older than the
// timeout is reported offline even if no disconnect was ever signalled,
// which reconciles abrupt connection loss.
type Tracker struct {
	mu      sync.RWMutex
	states  map[string]domain.Presence
	timeout time.Duration

	events chan<- event.DomainEvent
	log    *slog.Logger
	now    func() time.Time
}

func NewTracker(log *slog.Logger, events chan<- event.DomainEvent, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tracker{
		states:  make(map[string]domain.Presence),
		timeout: timeout,
		events:  events,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (t *Tracker) SetOnline(userID string, online bool) {
	t.mu.Lock()
	st := t.states[userID]
	st.Online = online
	st.LastSeenAt = t.now()
	if !online {
		st.TypingIn = ""
	}
	t.states[userID] = st
	t.mu.Unlock()

	t.emit(userID, st)
}

func (t *Tracker) SetTyping(userID string, target domain.ConversationID) {
	t.mu.Lock()
	st := t.states[userID]
	st.TypingIn = target
	st.LastSeenAt = t.now()
	t.states[userID] = st
	t.mu.Unlock()

	t.emit(userID, st)
}

// Heartbeat refreshes last-seen without publishing an event; a heartbeat
// alone changes nothing a subscriber can observe.
func (t *Tracker) Heartbeat(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := t.states[userID]
	st.LastSeenAt = t.now()
	t.states[userID] = st
}

// Get applies the heartbeat timeout on read, so stale entries report
// offline without waiting for the sweeper.
func (t *Tracker) Get(userID string) domain.Presence {
	t.mu.RLock()
	st, ok := t.states[userID]
	t.mu.RUnlock()
	if !ok {
		return domain.Presence{}
	}
	if st.Online && t.expired(st) {
		st.Online = false
		st.TypingIn = ""
	}
	return st
}

// Sweep flips users whose heartbeat expired to offline and publishes the
// change. Returns the affected user ids.
func (t *Tracker) Sweep() []string {
	var expired []string

	t.mu.Lock()
	for userID, st := range t.states {
		if st.Online && t.expired(st) {
			st.Online = false
			st.TypingIn = ""
			t.states[userID] = st
			expired = append(expired, userID)
		}
	}
	t.mu.Unlock()

	for _, userID := range expired {
		t.emit(userID, t.Get(userID))
	}
	return expired
}

func (t *Tracker) expired(st domain.Presence) bool {
	return t.now().Sub(st.LastSeenAt) > t.timeout
}

// emit never blocks a presence mutation on a full event channel.
func (t *Tracker) emit(userID string, st domain.Presence) {
	if t.events == nil {
		return
	}
	e := event.PresenceChanged{
		UserID:     userID,
		Online:     st.Online,
		LastSeenAt: st.LastSeenAt,
		TypingIn:   st.TypingIn,
	}
	select {
	case t.events <- e:
	default:
		t.log.Warn("presence event channel full, dropping event", "user_id", userID)
	}
}
