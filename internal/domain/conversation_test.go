package domain_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

func TestDirectConversationID_OrderIndependent(t *testing.T) {
	a := "1111-aaaa"
	b := "2222-bbbb"

	assert.Equal(t, domain.DirectConversationID("c-1", a, b), domain.DirectConversationID("c-1", b, a),
		"both participants must derive the same channel ID")
	assert.Equal(t, "c-1:1111-aaaa_2222-bbbb", domain.DirectConversationID("c-1", b, a))
}

func TestDirectConversationID_DistinctPairsDistinctIDs(t *testing.T) {
	id1 := domain.DirectConversationID("c-1", "alice", "bob")
	id2 := domain.DirectConversationID("c-1", "alice", "carol")
	assert.NotEqual(t, id1, id2)
}

func TestConversationIDs_ScopedPerCampaign(t *testing.T) {
	// Conversations live in one global table keyed by ID alone, so the same
	// pair in two campaigns must never share a row.
	assert.NotEqual(t,
		domain.DirectConversationID("c-1", "alice", "bob"),
		domain.DirectConversationID("c-2", "alice", "bob"))
	assert.NotEqual(t,
		domain.BroadcastConversationID("c-1"),
		domain.BroadcastConversationID("c-2"))
}

func TestConversation_HasParticipant(t *testing.T) {
	conv := &domain.Conversation{Participants: domain.StringSet{"u1", "u2"}}
	assert.True(t, conv.HasParticipant("u1"))
	assert.False(t, conv.HasParticipant("u3"))
}

func TestMessage_Preview_Truncates(t *testing.T) {
	short := &domain.Message{Content: "hello"}
	assert.Equal(t, "hello", short.Preview())

	long := &domain.Message{Content: strings.Repeat("x", 500)}
	assert.Len(t, long.Preview(), 120)
}

func TestMessage_Preview_KeepsRunesWhole(t *testing.T) {
	// The two-byte é sits at bytes 119-120, straddling the cut; it must be
	// dropped whole, not split.
	msg := &domain.Message{Content: strings.Repeat("a", 119) + "éclair"}
	preview := msg.Preview()

	assert.True(t, utf8.ValidString(preview))
	assert.Equal(t, strings.Repeat("a", 119), preview)
}
