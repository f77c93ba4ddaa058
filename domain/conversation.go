package domain

import (
	"time"

	"pairchat/errors"
)

type ConversationID string

// PairKey derives the canonical conversation id for two participants.
// The smaller id (byte order) always comes first, so both directions of a
// pair map to the same conversation.
func PairKey(a, b string) (ConversationID, error) {
	if a == "" || b == "" || a == b {
		return "", errors.ErrSamePair
	}
	if a > b {
		a, b = b, a
	}
	return ConversationID(a + "_" + b), nil
}

// Conversation is the durable summary of a two-party thread. Seq is the
// last message sequence handed out; Unread holds one counter per
// participant, keyed by user id.
type Conversation struct {
	ID                 ConversationID
	Participants       [2]string
	LastMessagePreview string
	LastMessageAt      time.Time
	Unread             map[string]int
	Seq                uint64
	CreatedAt          time.Time
}

func (c Conversation) HasParticipant(userID string) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// Other returns the participant that is not userID.
func (c Conversation) Other(userID string) (string, bool) {
	switch userID {
	case c.Participants[0]:
		return c.Participants[1], true
	case c.Participants[1]:
		return c.Participants[0], true
	}
	return "", false
}

// ChatSummary is the per-viewer projection of a conversation, enriched
// with the peer's profile and presence snapshot.
type ChatSummary struct {
	ConversationID     ConversationID
	PeerID             string
	PeerName           string
	PeerAvatar         string
	LastMessagePreview string
	LastMessageAt      time.Time
	Unread             int
	Online             bool
	Typing             bool
}
