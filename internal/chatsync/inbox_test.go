package chatsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(ids ...string) []Conversation {
	out := make([]Conversation, 0, len(ids))
	for _, id := range ids {
		out = append(out, Conversation{ID: id, Subject: "s-" + id})
	}
	return out
}

func ids(convs []Conversation) []string {
	out := make([]string, 0, len(convs))
	for _, c := range convs {
		out = append(out, c.ID)
	}
	return out
}

func TestApplySnapshotKeepsOrderAndCollapsesDuplicates(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a", "b", "A", "c", "b"))

	assert.Equal(t, []string{"a", "b", "c"}, ids(in.List()))
}

func TestAddDiscardsDuplicateCreation(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a", "b"))

	require.True(t, in.Add(Conversation{ID: "c"}))
	// same id in different case: still a duplicate
	assert.False(t, in.Add(Conversation{ID: "  C "}))
	assert.Equal(t, []string{"c", "a", "b"}, ids(in.List()))
}

func TestPatchIsIdempotent(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a"))

	status := "in_progress"
	sid := "op-1"
	name := "Anna Kowalska"
	p := ConversationPatch{Status: &status, SupportID: &sid, SupportName: &name}

	require.True(t, in.Patch("a", p))
	first, _ := in.Get("a")
	require.True(t, in.Patch("a", p))
	second, _ := in.Get("a")

	assert.Equal(t, first, second)
	assert.Equal(t, "in_progress", second.Status)
	require.NotNil(t, second.SupportID)
	assert.Equal(t, "op-1", *second.SupportID)
	require.NotNil(t, second.SupportName)
	assert.Equal(t, "Anna Kowalska", *second.SupportName)
}

func TestPatchClearsAssignment(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a"))

	sid := "op-1"
	name := "Anna"
	require.True(t, in.Patch("a", ConversationPatch{SupportID: &sid, SupportName: &name}))

	empty := ""
	require.True(t, in.Patch("a", ConversationPatch{SupportID: &empty}))
	c, _ := in.Get("a")
	assert.Nil(t, c.SupportID)
	assert.Nil(t, c.SupportName)
}

func TestPatchUnknownIDIgnored(t *testing.T) {
	in := NewInbox()
	status := "closed"
	assert.False(t, in.Patch("ghost", ConversationPatch{Status: &status}))
	assert.Equal(t, 0, in.Len())
}

func TestUnreadNeverNegative(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a"))

	n := -5
	require.True(t, in.Patch("a", ConversationPatch{UnreadCount: &n}))
	c, _ := in.Get("a")
	assert.Equal(t, 0, c.UnreadCount)
}

func TestResetUnreadNoOpGuard(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a"))

	// nothing to clear: the caller can skip the store call
	assert.False(t, in.ResetUnread("a"))

	n := 3
	require.True(t, in.Patch("a", ConversationPatch{UnreadCount: &n}))
	assert.True(t, in.ResetUnread("a"))
	assert.False(t, in.ResetUnread("a"))

	c, _ := in.Get("a")
	assert.Equal(t, 0, c.UnreadCount)
}

func TestMessageReceivedMovesToHeadPreservingRelativeOrder(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a", "b", "c", "d"))

	now := time.Now()
	in.MessageReceived(MessageReceived{
		ConversationID: "c",
		LastMessageAt:  now,
		LastMessageBy:  "user",
		Status:         "open",
		UnreadCount:    2,
	})

	assert.Equal(t, []string{"c", "a", "b", "d"}, ids(in.List()))

	c, ok := in.Get("c")
	require.True(t, ok)
	assert.Equal(t, 2, c.UnreadCount)
	assert.Equal(t, "user", c.LastMessageBy)
	assert.True(t, now.Equal(c.LastMessageAt))
}

func TestMessageReceivedAtHeadIsStable(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a", "b", "c"))

	in.MessageReceived(MessageReceived{ConversationID: "a", Status: "open", UnreadCount: 1})
	assert.Equal(t, []string{"a", "b", "c"}, ids(in.List()))
}

func TestMessageReceivedUnknownConversationPrepended(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a", "b"))

	in.MessageReceived(MessageReceived{
		ConversationID: "NEW",
		Status:         "open",
		UnreadCount:    1,
	})

	list := in.List()
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, 1, list[0].UnreadCount)
}

func TestDuplicateMessageReceivedIsIdempotent(t *testing.T) {
	// the gateway is at-least-once: the same delta twice must not change
	// anything beyond the first application
	in := NewInbox()
	in.ApplySnapshot(snapshot("a", "b"))

	ev := MessageReceived{
		ConversationID: "b",
		LastMessageAt:  time.Now(),
		LastMessageBy:  "user",
		Status:         "open",
		UnreadCount:    1,
	}
	in.MessageReceived(ev)
	first := in.List()
	in.MessageReceived(ev)
	second := in.List()

	assert.Equal(t, ids(first), ids(second))
	assert.Equal(t, first[0].UnreadCount, second[0].UnreadCount)
}

func TestRemove(t *testing.T) {
	in := NewInbox()
	in.ApplySnapshot(snapshot("a", "b", "c"))

	require.True(t, in.Remove("B"))
	assert.False(t, in.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, ids(in.List()))
}
