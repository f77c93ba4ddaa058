//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"pairchat/domain"
	"pairchat/domain/event"
	"pairchat/hub"
)

// Worker doesn't protect itself; the supervisor restarts it on panic.
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// used for logging and supervision without forcing a Name method on Worker.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is a best-effort in-process consumer of committed events,
// used for observability side channels next to the delivery hub.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IIdentityProvider is the external identity collaborator. The core
// trusts the user ids it hands out as opaque.
type IIdentityProvider interface {
	// Verify resolves a bearer credential to a user id, or ErrAuthFailure.
	Verify(ctx context.Context, credential string) (string, error)
	// Lookup returns the profile behind a user id, or ErrNotFound.
	Lookup(ctx context.Context, userID string) (domain.User, error)
}

// IBlobStore is the external media collaborator: opaque refs in, URLs out.
type IBlobStore interface {
	Store(ctx context.Context, data []byte, mimeType string) (string, error)
	Resolve(ctx context.Context, ref string) (string, error)
}

type IConversationStore interface {
	ResolveConversation(ctx context.Context, userA, userB string) (domain.Conversation, error)
	GetConversation(ctx context.Context, id domain.ConversationID) (domain.Conversation, error)
	AppendMessage(ctx context.Context, id domain.ConversationID, senderID string, content domain.Content) (domain.Message, error)
	MarkSeen(ctx context.Context, id domain.ConversationID, readerID string, upto domain.MessageID) error
	ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error)
	ListMessages(ctx context.Context, id domain.ConversationID, afterID domain.MessageID) ([]domain.Message, error)
	// SubscribeConversation atomically snapshots the log and attaches a live
	// subscription, so the caller sees every commit exactly once.
	SubscribeConversation(ctx context.Context, id domain.ConversationID) ([]domain.Message, *hub.Subscription, error)
}

type IPresenceTracker interface {
	SetOnline(userID string, online bool)
	SetTyping(userID string, target domain.ConversationID)
	Heartbeat(userID string)
	Get(userID string) domain.Presence
}
