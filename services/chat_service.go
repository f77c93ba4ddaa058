package services

import (
	"context"
	"fmt"
	"log/slog"

	"pairchat/contract"
	"pairchat/domain"
	"pairchat/domain/event"
	"pairchat/errors"
	"pairchat/hub"
	"pairchat/repositories"
)

type IChatService interface {
	Send(ctx context.Context, senderID, receiverID string, content domain.Content) (domain.Message, error)
	ListConversations(ctx context.Context, callerID string) ([]domain.ChatSummary, error)
	ListMessages(ctx context.Context, callerID string, convID domain.ConversationID, afterID domain.MessageID) ([]domain.Message, error)
	MarkSeen(ctx context.Context, callerID string, convID domain.ConversationID, upto domain.MessageID) error
	SubscribeConversation(ctx context.Context, callerID string, convID domain.ConversationID) ([]domain.Message, *hub.Subscription, error)
	SubscribeChatList(ctx context.Context, callerID string) ([]domain.ChatSummary, *hub.Subscription, error)
	SubscribePresence(ctx context.Context, callerID, targetID string) (domain.Presence, *hub.Subscription, error)
	ListContacts(ctx context.Context, callerID string) ([]domain.User, error)
}

// ChatService is a stateless coordinator over the conversation store, the
// presence tracker and the hub. Every operation confirms the caller is a
// participant of the target conversation, or the subject user, before
// delegating; downstream errors propagate untouched.
type ChatService struct {
	store    contract.IConversationStore
	presence contract.IPresenceTracker
	identity contract.IIdentityProvider
	users    repositories.IUserRepository
	hub      *hub.Hub
	log      *slog.Logger
}

func NewChatService(log *slog.Logger, store contract.IConversationStore,
	presence contract.IPresenceTracker, identity contract.IIdentityProvider,
	users repositories.IUserRepository, h *hub.Hub) *ChatService {
	return &ChatService{
		store:    store,
		presence: presence,
		identity: identity,
		users:    users,
		hub:      h,
		log:      log,
	}
}

// Send composes resolve + append so clients never manage conversation ids
// directly.
func (s *ChatService) Send(ctx context.Context, senderID, receiverID string, content domain.Content) (domain.Message, error) {
	conv, err := s.store.ResolveConversation(ctx, senderID, receiverID)
	if err != nil {
		return domain.Message{}, err
	}
	return s.store.AppendMessage(ctx, conv.ID, senderID, content)
}

func (s *ChatService) ListConversations(ctx context.Context, callerID string) ([]domain.ChatSummary, error) {
	convs, err := s.store.ListConversations(ctx, callerID)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.ChatSummary, 0, len(convs))
	for _, conv := range convs {
		summaries = append(summaries, s.summarize(ctx, callerID, conv))
	}
	return summaries, nil
}

func (s *ChatService) ListMessages(ctx context.Context, callerID string, convID domain.ConversationID, afterID domain.MessageID) ([]domain.Message, error) {
	if err := s.authorize(ctx, callerID, convID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, convID, afterID)
}

func (s *ChatService) MarkSeen(ctx context.Context, callerID string, convID domain.ConversationID, upto domain.MessageID) error {
	if err := s.authorize(ctx, callerID, convID); err != nil {
		return err
	}
	return s.store.MarkSeen(ctx, convID, callerID, upto)
}

// SubscribeConversation returns the full log snapshot plus a live
// subscription; together they cover every commit exactly once.
func (s *ChatService) SubscribeConversation(ctx context.Context, callerID string, convID domain.ConversationID) ([]domain.Message, *hub.Subscription, error) {
	if err := s.authorize(ctx, callerID, convID); err != nil {
		return nil, nil, err
	}
	return s.store.SubscribeConversation(ctx, convID)
}

// SubscribeChatList attaches before snapshotting. Chat list events carry
// absolute summaries, so an event that races the snapshot only repeats
// state the snapshot already shows.
func (s *ChatService) SubscribeChatList(ctx context.Context, callerID string) ([]domain.ChatSummary, *hub.Subscription, error) {
	sub := s.hub.Subscribe(event.UserSubject(callerID))

	summaries, err := s.ListConversations(ctx, callerID)
	if err != nil {
		sub.Cancel()
		return nil, nil, err
	}
	return summaries, sub, nil
}

// SubscribePresence watches another user's online/typing state. Contact
// resolution is the client's concern; any authenticated caller may watch
// any existing user.
func (s *ChatService) SubscribePresence(ctx context.Context, callerID, targetID string) (domain.Presence, *hub.Subscription, error) {
	if _, err := s.identity.Lookup(ctx, targetID); err != nil {
		return domain.Presence{}, nil, err
	}
	sub := s.hub.Subscribe(event.UserSubject(targetID))
	return s.presence.Get(targetID), sub, nil
}

func (s *ChatService) ListContacts(ctx context.Context, callerID string) ([]domain.User, error) {
	return s.users.ListUsers(ctx, callerID)
}

func (s *ChatService) authorize(ctx context.Context, callerID string, convID domain.ConversationID) error {
	conv, err := s.store.GetConversation(ctx, convID)
	if err != nil {
		return err
	}
	if !conv.HasParticipant(callerID) {
		return fmt.Errorf("caller %s: %w", callerID, errors.ErrForbidden)
	}
	return nil
}

func (s *ChatService) summarize(ctx context.Context, callerID string, conv domain.Conversation) domain.ChatSummary {
	summary := domain.ChatSummary{
		ConversationID:     conv.ID,
		LastMessagePreview: conv.LastMessagePreview,
		LastMessageAt:      conv.LastMessageAt,
		Unread:             conv.Unread[callerID],
	}

	peerID, ok := conv.Other(callerID)
	if !ok {
		return summary
	}
	summary.PeerID = peerID

	if peer, err := s.identity.Lookup(ctx, peerID); err == nil {
		summary.PeerName = peer.DisplayName
		summary.PeerAvatar = peer.AvatarRef
	} else {
		s.log.Debug("peer lookup failed for chat summary", "peer_id", peerID, "error", err)
	}

	st := s.presence.Get(peerID)
	summary.Online = st.Online
	summary.Typing = st.TypingIn == conv.ID
	return summary
}
