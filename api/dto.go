package api

import (
	"context"

	"github.com/samber/lo"

	"pairchat/contract"
	"pairchat/domain"
	"pairchat/domain/event"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	Status       string `json:"status"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:           u.ID,
		Name:         u.DisplayName,
		Email:        u.Email,
		ProfileImage: u.AvatarRef,
		Status:       u.StatusText,
	}
}

type profileUpdateRequest struct {
	Name      *string `json:"name"`
	Status    *string `json:"status"`
	AvatarRef *string `json:"avatarRef"`
}

type sendRequest struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Message    string `json:"message"`
	MediaRef   string `json:"mediaRef"`
}

type seenRequest struct {
	UpTo string `json:"upTo" binding:"required"`
}

type onlineRequest struct {
	Online bool `json:"online"`
}

type typingRequest struct {
	ConversationID string `json:"conversationId"`
}

type messageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	ReceiverID     string `json:"receiverId"`
	Message        string `json:"message,omitempty"`
	MediaURL       string `json:"mediaUrl,omitempty"`
	Timestamp      int64  `json:"timestamp"`
	Seen           bool   `json:"seen"`
}

type chatResponse struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	UserName       string `json:"userName"`
	UserImage      string `json:"userImage,omitempty"`
	LastMessage    string `json:"lastMessage"`
	LastMessageAt  int64  `json:"lastMessageTime"`
	UnreadCount    int    `json:"unreadCount"`
	Online         bool   `json:"online"`
	Typing         bool   `json:"typing"`
}

type presenceResponse struct {
	UserID   string `json:"userId"`
	Online   bool   `json:"online"`
	LastSeen int64  `json:"lastSeen"`
	TypingIn string `json:"typingIn,omitempty"`
}

type blobResponse struct {
	Ref string `json:"ref"`
	URL string `json:"url"`
}

// mapper resolves media refs to URLs while converting domain values to
// transport DTOs.
type mapper struct {
	blobs contract.IBlobStore
}

func (m mapper) message(ctx context.Context, msg domain.Message) messageResponse {
	res := messageResponse{
		ID:             string(msg.ID),
		ConversationID: string(msg.ConversationID),
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		Message:        msg.Body,
		Timestamp:      msg.SentAt.UnixMilli(),
		Seen:           msg.Seen,
	}
	if msg.MediaRef != "" {
		if url, err := m.blobs.Resolve(ctx, msg.MediaRef); err == nil {
			res.MediaURL = url
		}
	}
	return res
}

func (m mapper) messages(ctx context.Context, msgs []domain.Message) []messageResponse {
	return lo.Map(msgs, func(msg domain.Message, _ int) messageResponse {
		return m.message(ctx, msg)
	})
}

func toChatResponse(s domain.ChatSummary) chatResponse {
	return chatResponse{
		ConversationID: string(s.ConversationID),
		UserID:         s.PeerID,
		UserName:       s.PeerName,
		UserImage:      s.PeerAvatar,
		LastMessage:    s.LastMessagePreview,
		LastMessageAt:  s.LastMessageAt.UnixMilli(),
		UnreadCount:    s.Unread,
		Online:         s.Online,
		Typing:         s.Typing,
	}
}

func toChatResponses(summaries []domain.ChatSummary) []chatResponse {
	return lo.Map(summaries, func(s domain.ChatSummary, _ int) chatResponse {
		return toChatResponse(s)
	})
}

func toPresenceResponse(userID string, p domain.Presence) presenceResponse {
	return presenceResponse{
		UserID:   userID,
		Online:   p.Online,
		LastSeen: p.LastSeenAt.UnixMilli(),
		TypingIn: string(p.TypingIn),
	}
}

// wsFrame is the envelope pushed over a websocket subscription.
type wsFrame struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (m mapper) frame(ctx context.Context, e event.DomainEvent) (wsFrame, bool) {
	switch evt := e.(type) {
	case event.MessageAppended:
		return wsFrame{Type: "message", Payload: m.message(ctx, evt.Message)}, true
	case event.MessagesSeen:
		return wsFrame{Type: "seen", Payload: map[string]any{
			"conversationId": string(evt.ConversationID),
			"readerId":       evt.ReaderID,
			"upTo":           string(evt.UpTo),
			"unreadCount":    evt.Unread,
		}}, true
	case event.ChatListUpdated:
		// Same shape as the snapshot rows, so clients render live events
		// and replayed summaries with one code path.
		return wsFrame{Type: "chat", Payload: chatResponse{
			ConversationID: string(evt.ConversationID),
			UserID:         evt.PeerID,
			UserName:       evt.PeerName,
			UserImage:      evt.PeerAvatar,
			LastMessage:    evt.LastMessagePreview,
			LastMessageAt:  evt.LastMessageAt.UnixMilli(),
			UnreadCount:    evt.Unread,
			Online:         evt.Online,
			Typing:         evt.Typing,
		}}, true
	case event.PresenceChanged:
		return wsFrame{Type: "presence", Payload: presenceResponse{
			UserID:   evt.UserID,
			Online:   evt.Online,
			LastSeen: evt.LastSeenAt.UnixMilli(),
			TypingIn: string(evt.TypingIn),
		}}, true
	}
	return wsFrame{}, false
}
