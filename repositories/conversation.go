package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"pairchat/contract"
	"pairchat/domain"
	"pairchat/domain/event"
	"pairchat/errors"
	"pairchat/hub"
)

// Key layout:
//
//	conv:{convID}              conversation summary record
//	member:{userID}:{convID}   membership index for chat list scans
//	msg:{convID}:{messageID}   message log; messageID is a 19-digit
//	                           zero-padded sequence, so a prefix scan
//	                           yields messages already in order.
const (
	convPrefix   = "conv:"
	memberPrefix = "member:"
	msgPrefix    = "msg:"
)

// ConversationStore owns conversation records and message logs. Mutations
// of one conversation are serialized by a per-conversation mutex so the
// log append and the summary update commit as one atomic unit; independent
// conversations proceed in parallel. Committed events are published to the
// hub while the lock is still held, which gives subscribers commit order.
type ConversationStore struct {
	db       *badger.DB
	log      *slog.Logger
	hub      *hub.Hub
	identity contract.IIdentityProvider
	presence contract.IPresenceTracker
	sinks    []contract.EventSink

	mu    sync.Mutex
	locks map[domain.ConversationID]*sync.Mutex

	now func() time.Time
}

func NewConversationStore(db *badger.DB, log *slog.Logger, h *hub.Hub,
	identity contract.IIdentityProvider, presence contract.IPresenceTracker) *ConversationStore {
	return &ConversationStore{
		db:       db,
		log:      log,
		hub:      h,
		identity: identity,
		presence: presence,
		locks:    make(map[domain.ConversationID]*sync.Mutex),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// AddSinks attaches best-effort consumers that mirror every committed
// event, next to the hub delivery.
func (s *ConversationStore) AddSinks(sinks ...contract.EventSink) *ConversationStore {
	s.sinks = append(s.sinks, sinks...)
	return s
}

func (s *ConversationStore) lock(id domain.ConversationID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// ResolveConversation derives the canonical id for a pair and creates the
// record on first call. Subsequent calls for the same pair, in either
// order, return the existing conversation.
func (s *ConversationStore) ResolveConversation(ctx context.Context, userA, userB string) (domain.Conversation, error) {
	id, err := domain.PairKey(userA, userB)
	if err != nil {
		return domain.Conversation{}, err
	}

	if s.identity != nil {
		for _, u := range []string{userA, userB} {
			if _, err := s.identity.Lookup(ctx, u); err != nil {
				return domain.Conversation{}, fmt.Errorf("participant %s: %w", u, err)
			}
		}
	}

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	var conv domain.Conversation
	err = s.db.Update(func(txn *badger.Txn) error {
		existing, err := getConversation(txn, id)
		if err == nil {
			conv = existing
			return nil
		}
		if !stderrors.Is(err, errors.ErrNotFound) {
			return err
		}

		conv = domain.Conversation{
			ID:        id,
			Unread:    map[string]int{userA: 0, userB: 0},
			CreatedAt: s.now(),
		}
		conv.Participants[0], conv.Participants[1] = orderedPair(userA, userB)

		if err := setConversation(txn, conv); err != nil {
			return err
		}
		for _, u := range conv.Participants {
			if err := txn.Set(memberKey(u, id), nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Conversation{}, storeErr(err)
	}
	return conv, nil
}

func (s *ConversationStore) GetConversation(ctx context.Context, id domain.ConversationID) (domain.Conversation, error) {
	var conv domain.Conversation
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		conv, err = getConversation(txn, id)
		return err
	})
	if err != nil {
		return domain.Conversation{}, storeErr(err)
	}
	return conv, nil
}

// AppendMessage validates the sender, assigns the server timestamp and the
// next sequence id, and commits the log entry together with the summary
// update and the receiver's unread increment in a single transaction.
func (s *ConversationStore) AppendMessage(ctx context.Context, id domain.ConversationID, senderID string, content domain.Content) (domain.Message, error) {
	if err := content.Validate(); err != nil {
		return domain.Message{}, err
	}

	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	var (
		msg  domain.Message
		conv domain.Conversation
	)
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		conv, err = getConversation(txn, id)
		if err != nil {
			return err
		}
		receiverID, ok := conv.Other(senderID)
		if !ok {
			return fmt.Errorf("sender %s: %w", senderID, errors.ErrForbidden)
		}

		conv.Seq++
		msg = domain.Message{
			ID:             domain.NewMessageID(conv.Seq),
			ConversationID: id,
			SenderID:       senderID,
			ReceiverID:     receiverID,
			Body:           content.Body,
			MediaRef:       content.MediaRef,
			SentAt:         s.now(),
		}
		conv.LastMessagePreview = content.Preview()
		conv.LastMessageAt = msg.SentAt
		conv.Unread[receiverID]++

		if err := setMessage(txn, msg); err != nil {
			return err
		}
		return setConversation(txn, conv)
	})
	if err != nil {
		return domain.Message{}, storeErr(err)
	}

	s.publish(ctx, event.MessageAppended{Message: msg})
	s.publishChatList(ctx, conv)
	return msg, nil
}

// MarkSeen flips seen on every message addressed to readerID with id up to
// the watermark and resets the reader's unread counter to what is still
// unseen afterwards. Applying the same watermark twice is a no-op.
func (s *ConversationStore) MarkSeen(ctx context.Context, id domain.ConversationID, readerID string, upto domain.MessageID) error {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	var (
		conv   domain.Conversation
		unread int
	)
	err := s.db.Update(func(txn *badger.Txn) error {
		var err error
		conv, err = getConversation(txn, id)
		if err != nil {
			return err
		}
		if !conv.HasParticipant(readerID) {
			return fmt.Errorf("reader %s: %w", readerID, errors.ErrForbidden)
		}
		if upto == "" || upto > domain.NewMessageID(conv.Seq) {
			return fmt.Errorf("watermark %s: %w", upto, errors.ErrConflict)
		}

		unread = 0
		prefix := []byte(msgPrefix + string(id) + ":")
		options := badger.DefaultIteratorOptions
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var rec diskMessage
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return err
			}
			if rec.ReceiverID != readerID || rec.Seen {
				continue
			}
			if domain.MessageID(rec.ID) > upto {
				unread++
				continue
			}
			rec.Seen = true
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := txn.Set(msgKey(id, domain.MessageID(rec.ID)), data); err != nil {
				return err
			}
		}

		conv.Unread[readerID] = unread
		return setConversation(txn, conv)
	})
	if err != nil {
		return storeErr(err)
	}

	s.publish(ctx, event.MessagesSeen{
		ConversationID: id,
		ReaderID:       readerID,
		UpTo:           upto,
		Unread:         unread,
	})
	s.publishChatList(ctx, conv)
	return nil
}

// ListConversations returns every conversation containing userID, most
// recent activity first; ties break on conversation id for determinism.
func (s *ConversationStore) ListConversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(memberPrefix + userID + ":")
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			convID := domain.ConversationID(it.Item().Key()[len(prefix):])
			conv, err := getConversation(txn, convID)
			if err != nil {
				return err
			}
			convs = append(convs, conv)
		}
		return nil
	})
	if err != nil {
		return nil, storeErr(err)
	}

	sort.Slice(convs, func(i, j int) bool {
		if !convs[i].LastMessageAt.Equal(convs[j].LastMessageAt) {
			return convs[i].LastMessageAt.After(convs[j].LastMessageAt)
		}
		return convs[i].ID < convs[j].ID
	})
	return convs, nil
}

// ListMessages returns the log in ascending (sentAt, id) order, starting
// after afterID when set.
func (s *ConversationStore) ListMessages(ctx context.Context, id domain.ConversationID, afterID domain.MessageID) ([]domain.Message, error) {
	var msgs []domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := getConversation(txn, id); err != nil {
			return err
		}
		var err error
		msgs, err = listMessages(txn, id, afterID)
		return err
	})
	if err != nil {
		return nil, storeErr(err)
	}
	return msgs, nil
}

// SubscribeConversation snapshots the full log and attaches a live
// subscription under the conversation lock. Because publishes happen under
// the same lock, the subscriber misses nothing and sees no duplicates.
func (s *ConversationStore) SubscribeConversation(ctx context.Context, id domain.ConversationID) ([]domain.Message, *hub.Subscription, error) {
	l := s.lock(id)
	l.Lock()
	defer l.Unlock()

	var msgs []domain.Message
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := getConversation(txn, id); err != nil {
			return err
		}
		var err error
		msgs, err = listMessages(txn, id, "")
		return err
	})
	if err != nil {
		return nil, nil, storeErr(err)
	}

	sub := s.hub.NewSubscription(event.ConversationSubject(id))
	s.hub.Activate(sub)
	return msgs, sub, nil
}

func (s *ConversationStore) publish(ctx context.Context, e event.DomainEvent) {
	if s.hub != nil {
		s.hub.Publish(e)
	}
	for _, sink := range s.sinks {
		if err := sink.Consume(ctx, e); err != nil {
			s.log.Warn("sink rejected event", "error", err)
		}
	}
}

// publishChatList emits one absolute summary per participant, enriched
// with the peer's profile and presence so the event renders standalone.
func (s *ConversationStore) publishChatList(ctx context.Context, conv domain.Conversation) {
	for _, u := range conv.Participants {
		e := event.ChatListUpdated{
			UserID:             u,
			ConversationID:     conv.ID,
			LastMessagePreview: conv.LastMessagePreview,
			LastMessageAt:      conv.LastMessageAt,
			Unread:             conv.Unread[u],
		}
		if peerID, ok := conv.Other(u); ok {
			e.PeerID = peerID
			if s.identity != nil {
				if peer, err := s.identity.Lookup(ctx, peerID); err == nil {
					e.PeerName = peer.DisplayName
					e.PeerAvatar = peer.AvatarRef
				} else {
					s.log.Debug("peer lookup failed for chat list event", "peer_id", peerID, "error", err)
				}
			}
			if s.presence != nil {
				st := s.presence.Get(peerID)
				e.Online = st.Online
				e.Typing = st.TypingIn == conv.ID
			}
		}
		s.publish(ctx, e)
	}
}

func listMessages(txn *badger.Txn, id domain.ConversationID, afterID domain.MessageID) ([]domain.Message, error) {
	var msgs []domain.Message
	prefix := []byte(msgPrefix + string(id) + ":")

	seekKey := prefix
	if afterID != "" {
		seekKey = msgKey(id, afterID)
	}

	options := badger.DefaultIteratorOptions
	it := txn.NewIterator(options)
	defer it.Close()

	it.Seek(seekKey)
	if afterID != "" && it.ValidForPrefix(prefix) && string(it.Item().Key()) == string(msgKey(id, afterID)) {
		it.Next()
	}

	for ; it.ValidForPrefix(prefix); it.Next() {
		var rec diskMessage
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			return nil, err
		}
		msgs = append(msgs, toMessage(rec))
	}
	return msgs, nil
}

func getConversation(txn *badger.Txn, id domain.ConversationID) (domain.Conversation, error) {
	item, err := txn.Get(convKey(id))
	if err != nil {
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			return domain.Conversation{}, fmt.Errorf("conversation %s: %w", id, errors.ErrNotFound)
		}
		return domain.Conversation{}, err
	}
	var rec diskConversation
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return domain.Conversation{}, err
	}
	return toConversation(rec), nil
}

func setConversation(txn *badger.Txn, conv domain.Conversation) error {
	data, err := json.Marshal(fromConversation(conv))
	if err != nil {
		return err
	}
	return txn.Set(convKey(conv.ID), data)
}

func setMessage(txn *badger.Txn, msg domain.Message) error {
	data, err := json.Marshal(fromMessage(msg))
	if err != nil {
		return err
	}
	return txn.Set(msgKey(msg.ConversationID, msg.ID), data)
}

func convKey(id domain.ConversationID) []byte {
	return []byte(convPrefix + string(id))
}

func memberKey(userID string, id domain.ConversationID) []byte {
	return []byte(memberPrefix + userID + ":" + string(id))
}

func msgKey(id domain.ConversationID, msgID domain.MessageID) []byte {
	return []byte(msgPrefix + string(id) + ":" + string(msgID))
}

func orderedPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}
