package services

import (
	"context"
	"fmt"

	"pairchat/contract"
	"pairchat/domain"
	"pairchat/errors"
)

type IPresenceService interface {
	SetOnline(ctx context.Context, callerID string, online bool) error
	SetTyping(ctx context.Context, callerID string, target domain.ConversationID) error
	Heartbeat(ctx context.Context, callerID string) error
}

// PresenceService guards the tracker with subject checks: a caller can
// only mutate their own status, and a typing target must be a
// conversation they participate in.
type PresenceService struct {
	tracker contract.IPresenceTracker
	store   contract.IConversationStore
}

func NewPresenceService(tracker contract.IPresenceTracker, store contract.IConversationStore) *PresenceService {
	return &PresenceService{tracker: tracker, store: store}
}

func (s *PresenceService) SetOnline(ctx context.Context, callerID string, online bool) error {
	s.tracker.SetOnline(callerID, online)
	return nil
}

func (s *PresenceService) SetTyping(ctx context.Context, callerID string, target domain.ConversationID) error {
	if target != "" {
		conv, err := s.store.GetConversation(ctx, target)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(callerID) {
			return fmt.Errorf("caller %s: %w", callerID, errors.ErrForbidden)
		}
	}
	s.tracker.SetTyping(callerID, target)
	return nil
}

func (s *PresenceService) Heartbeat(ctx context.Context, callerID string) error {
	s.tracker.Heartbeat(callerID)
	return nil
}
