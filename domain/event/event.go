package event

import (
	"time"

	"pairchat/domain"
)

type SubjectKind string

const (
	KindConversation SubjectKind = "conversation"
	KindUser         SubjectKind = "user"
)

// Subject identifies the stream an event belongs to: either one
// conversation (message events) or one user (chat list and presence).
type Subject struct {
	Kind SubjectKind
	ID   string
}

func ConversationSubject(id domain.ConversationID) Subject {
	return Subject{Kind: KindConversation, ID: string(id)}
}

func UserSubject(userID string) Subject {
	return Subject{Kind: KindUser, ID: userID}
}

type DomainEvent interface {
	Subject() Subject
}

// MessageAppended is published once per committed append, in commit order.
type MessageAppended struct {
	Message domain.Message
}

func (e MessageAppended) Subject() Subject {
	return ConversationSubject(e.Message.ConversationID)
}

// MessagesSeen is published after a seen watermark commit. Unread is the
// reader's counter after the update.
type MessagesSeen struct {
	ConversationID domain.ConversationID
	ReaderID       string
	UpTo           domain.MessageID
	Unread         int
}

func (e MessagesSeen) Subject() Subject {
	return ConversationSubject(e.ConversationID)
}

// ChatListUpdated is the derived summary event for one participant's chat
// list. It carries absolute state, so redelivery after a replay is benign.
// The peer fields mirror the chat-list snapshot row, so a live event is
// renderable on its own without a follow-up lookup.
type ChatListUpdated struct {
	UserID             string
	ConversationID     domain.ConversationID
	PeerID             string
	PeerName           string
	PeerAvatar         string
	LastMessagePreview string
	LastMessageAt      time.Time
	Unread             int
	Online             bool
	Typing             bool
}

func (e ChatListUpdated) Subject() Subject { return UserSubject(e.UserID) }

// PresenceChanged reflects a presence tracker mutation for one user.
type PresenceChanged struct {
	UserID     string
	Online     bool
	LastSeenAt time.Time
	TypingIn   domain.ConversationID
}

func (e PresenceChanged) Subject() Subject { return UserSubject(e.UserID) }
