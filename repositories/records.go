package repositories

import (
	"time"

	"pairchat/domain"
)

// Disk records are the persisted shape of domain types. Field names follow
// the wire vocabulary of the chat list (lastMessage, unread, seen) rather
// than the richer domain names.

type diskConversation struct {
	ID            string         `json:"id"`
	Participants  [2]string      `json:"participants"`
	LastMessage   string         `json:"lastMessage"`
	LastMessageAt int64          `json:"lastMessageTime"`
	Unread        map[string]int `json:"unread"`
	Seq           uint64         `json:"seq"`
	CreatedAt     int64          `json:"createdAt"`
}

func fromConversation(c domain.Conversation) diskConversation {
	return diskConversation{
		ID:            string(c.ID),
		Participants:  c.Participants,
		LastMessage:   c.LastMessagePreview,
		LastMessageAt: c.LastMessageAt.UnixNano(),
		Unread:        c.Unread,
		Seq:           c.Seq,
		CreatedAt:     c.CreatedAt.UnixNano(),
	}
}

func toConversation(d diskConversation) domain.Conversation {
	return domain.Conversation{
		ID:                 domain.ConversationID(d.ID),
		Participants:       d.Participants,
		LastMessagePreview: d.LastMessage,
		LastMessageAt:      time.Unix(0, d.LastMessageAt).UTC(),
		Unread:             d.Unread,
		Seq:                d.Seq,
		CreatedAt:          time.Unix(0, d.CreatedAt).UTC(),
	}
}

type diskMessage struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	ReceiverID     string `json:"receiverId"`
	Body           string `json:"message,omitempty"`
	MediaRef       string `json:"mediaRef,omitempty"`
	SentAt         int64  `json:"timestamp"`
	Seen           bool   `json:"seen"`
}

func fromMessage(m domain.Message) diskMessage {
	return diskMessage{
		ID:             string(m.ID),
		ConversationID: string(m.ConversationID),
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Body:           m.Body,
		MediaRef:       m.MediaRef,
		SentAt:         m.SentAt.UnixNano(),
		Seen:           m.Seen,
	}
}

func toMessage(d diskMessage) domain.Message {
	return domain.Message{
		ID:             domain.MessageID(d.ID),
		ConversationID: domain.ConversationID(d.ConversationID),
		SenderID:       d.SenderID,
		ReceiverID:     d.ReceiverID,
		Body:           d.Body,
		MediaRef:       d.MediaRef,
		SentAt:         time.Unix(0, d.SentAt).UTC(),
		Seen:           d.Seen,
	}
}

type diskUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"name"`
	AvatarRef   string `json:"profileImage,omitempty"`
	StatusText  string `json:"status"`
	Disabled    bool   `json:"disabled,omitempty"`
	CreatedAt   int64  `json:"createdAt"`

	PasswordHash string `json:"passwordHash"`
}

func fromUser(u domain.User, passwordHash string) diskUser {
	return diskUser{
		ID:           u.ID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		AvatarRef:    u.AvatarRef,
		StatusText:   u.StatusText,
		Disabled:     u.Disabled,
		CreatedAt:    u.CreatedAt.UnixNano(),
		PasswordHash: passwordHash,
	}
}

func toUser(d diskUser) domain.User {
	return domain.User{
		ID:          d.ID,
		Email:       d.Email,
		DisplayName: d.DisplayName,
		AvatarRef:   d.AvatarRef,
		StatusText:  d.StatusText,
		Disabled:    d.Disabled,
		CreatedAt:   time.Unix(0, d.CreatedAt).UTC(),
	}
}
