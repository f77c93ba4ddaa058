package presence

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pairchat/domain"
	"pairchat/domain/event"
)

func newTestTracker(events chan event.DomainEvent) (*Tracker, *time.Time) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(slog.Default(), events, 30*time.Second)
	tracker.now = func() time.Time { return clock }
	return tracker, &clock
}

func Test_SetOnline_Emits_Presence_Events(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	tracker, clock := newTestTracker(events)

	tracker.SetOnline("alice", true)

	st := tracker.Get("alice")
	req.True(st.Online)
	req.Equal(*clock, st.LastSeenAt)

	evt := (<-events).(event.PresenceChanged)
	req.Equal("alice", evt.UserID)
	req.True(evt.Online)
}

func Test_Going_Offline_Clears_Typing(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	tracker, _ := newTestTracker(events)

	tracker.SetOnline("alice", true)
	tracker.SetTyping("alice", "alice_bob")
	req.Equal(domain.ConversationID("alice_bob"), tracker.Get("alice").TypingIn)

	tracker.SetOnline("alice", false)
	st := tracker.Get("alice")
	req.False(st.Online)
	req.Empty(st.TypingIn)
}

func Test_Heartbeat_Refreshes_Without_Emitting(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	tracker, clock := newTestTracker(events)

	tracker.SetOnline("alice", true)
	<-events

	*clock = clock.Add(20 * time.Second)
	tracker.Heartbeat("alice")
	req.Empty(events, "heartbeat must not publish")

	// The heartbeat moved the deadline: 20s + 25s would have expired the
	// original last-seen, but not the refreshed one.
	*clock = clock.Add(25 * time.Second)
	req.True(tracker.Get("alice").Online)
}

func Test_Get_Applies_Timeout_On_Read(t *testing.T) {
	req := require.New(t)
	tracker, clock := newTestTracker(nil)

	tracker.SetOnline("alice", true)
	tracker.SetTyping("alice", "alice_bob")

	*clock = clock.Add(31 * time.Second)
	st := tracker.Get("alice")
	req.False(st.Online)
	req.Empty(st.TypingIn)

	req.Equal(domain.Presence{}, tracker.Get("stranger"))
}

func Test_Sweep_Expires_And_Publishes(t *testing.T) {
	req := require.New(t)
	events := make(chan event.DomainEvent, 8)
	tracker, clock := newTestTracker(events)

	tracker.SetOnline("alice", true)
	tracker.SetOnline("bob", true)
	<-events
	<-events

	*clock = clock.Add(10 * time.Second)
	tracker.Heartbeat("bob")
	*clock = clock.Add(25 * time.Second)

	expired := tracker.Sweep()
	req.Equal([]string{"alice"}, expired)
	req.False(tracker.Get("alice").Online)
	req.True(tracker.Get("bob").Online)

	evt := (<-events).(event.PresenceChanged)
	req.Equal("alice", evt.UserID)
	req.False(evt.Online)

	// Already offline: a second sweep has nothing to do.
	req.Empty(tracker.Sweep())
}

func Test_Emit_Never_Blocks_On_Full_Channel(t *testing.T) {
	events := make(chan event.DomainEvent, 1)
	tracker, _ := newTestTracker(events)

	tracker.SetOnline("alice", true)
	tracker.SetOnline("alice", false)
	tracker.SetTyping("alice", "alice_bob")
}
