package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pairchat/domain"
	"pairchat/domain/event"
)

// Live chat frames and replayed snapshot rows must be the same shape, so
// a client renders both with one code path.
func Test_Chat_Frame_Matches_Snapshot_Row(t *testing.T) {
	req := require.New(t)
	m := mapper{}

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	frame, ok := m.frame(context.Background(), event.ChatListUpdated{
		UserID:             "bob",
		ConversationID:     "alice_bob",
		PeerID:             "alice",
		PeerName:           "Alice",
		PeerAvatar:         "ref-alice",
		LastMessagePreview: "hi",
		LastMessageAt:      at,
		Unread:             1,
		Online:             true,
		Typing:             true,
	})
	req.True(ok)
	req.Equal("chat", frame.Type)

	want := toChatResponse(domain.ChatSummary{
		ConversationID:     "alice_bob",
		PeerID:             "alice",
		PeerName:           "Alice",
		PeerAvatar:         "ref-alice",
		LastMessagePreview: "hi",
		LastMessageAt:      at,
		Unread:             1,
		Online:             true,
		Typing:             true,
	})
	req.Equal(want, frame.Payload)
}

func Test_Presence_Frame_Carries_Typing_Target(t *testing.T) {
	req := require.New(t)
	m := mapper{}

	frame, ok := m.frame(context.Background(), event.PresenceChanged{
		UserID:   "alice",
		Online:   true,
		TypingIn: "alice_bob",
	})
	req.True(ok)
	req.Equal("presence", frame.Type)

	payload := frame.Payload.(presenceResponse)
	req.Equal("alice", payload.UserID)
	req.True(payload.Online)
	req.Equal("alice_bob", payload.TypingIn)
}
