package sink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pairchat/domain"
	"pairchat/domain/event"
)

func Test_Tally_Counts_Per_Kind(t *testing.T) {
	req := require.New(t)
	tally := NewTally()
	ctx := context.Background()

	req.NoError(tally.Consume(ctx, event.MessageAppended{Message: domain.Message{ConversationID: "alice_bob"}}))
	req.NoError(tally.Consume(ctx, event.MessageAppended{Message: domain.Message{ConversationID: "alice_bob"}}))
	req.NoError(tally.Consume(ctx, event.MessagesSeen{ConversationID: "alice_bob"}))
	req.NoError(tally.Consume(ctx, event.ChatListUpdated{UserID: "alice"}))
	req.NoError(tally.Consume(ctx, event.PresenceChanged{UserID: "alice"}))

	counts := tally.Snapshot()
	req.Equal(uint64(2), counts["message_appended"])
	req.Equal(uint64(1), counts["messages_seen"])
	req.Equal(uint64(1), counts["chat_list_updated"])
	req.Equal(uint64(1), counts["presence_changed"])
}

func Test_Tally_Snapshot_Is_A_Copy(t *testing.T) {
	req := require.New(t)
	tally := NewTally()

	req.NoError(tally.Consume(context.Background(), event.PresenceChanged{UserID: "alice"}))

	first := tally.Snapshot()
	first["presence_changed"] = 99

	req.Equal(uint64(1), tally.Snapshot()["presence_changed"])
}
