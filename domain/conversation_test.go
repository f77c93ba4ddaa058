package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pairchat/errors"
)

func Test_PairKey_Symmetric_And_Stable(t *testing.T) {
	req := require.New(t)

	ab, err := PairKey("alice", "bob")
	req.NoError(err)
	ba, err := PairKey("bob", "alice")
	req.NoError(err)

	req.Equal(ab, ba)
	req.Equal(ConversationID("alice_bob"), ab)

	again, err := PairKey("alice", "bob")
	req.NoError(err)
	req.Equal(ab, again)
}

func Test_PairKey_Rejects_Degenerate_Pairs(t *testing.T) {
	req := require.New(t)

	_, err := PairKey("alice", "alice")
	req.ErrorIs(err, errors.ErrSamePair)

	_, err = PairKey("", "bob")
	req.ErrorIs(err, errors.ErrSamePair)
}

func Test_Conversation_Other(t *testing.T) {
	req := require.New(t)

	conv := Conversation{Participants: [2]string{"alice", "bob"}}

	other, ok := conv.Other("alice")
	req.True(ok)
	req.Equal("bob", other)

	other, ok = conv.Other("bob")
	req.True(ok)
	req.Equal("alice", other)

	_, ok = conv.Other("mallory")
	req.False(ok)
	req.False(conv.HasParticipant("mallory"))
}

func Test_Content_Exactly_One_Kind(t *testing.T) {
	req := require.New(t)

	req.NoError(TextContent("hi").Validate())
	req.NoError(MediaContent("ref-1").Validate())

	req.ErrorIs(Content{}.Validate(), errors.ErrInvalidContent)
	req.ErrorIs(Content{Body: "hi", MediaRef: "ref-1"}.Validate(), errors.ErrInvalidContent)
}

func Test_Content_Preview(t *testing.T) {
	req := require.New(t)

	req.Equal("hi", TextContent("hi").Preview())
	req.Equal("[photo]", MediaContent("ref-1").Preview())
}

func Test_MessageID_Order_Matches_Sequence(t *testing.T) {
	req := require.New(t)

	prev := NewMessageID(1)
	for seq := uint64(2); seq < 12; seq++ {
		id := NewMessageID(seq)
		req.True(prev < id, "ids must sort in sequence order")
		prev = id
	}
}
