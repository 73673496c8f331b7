package chatsync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id string, at time.Time, senderType string) Message {
	return Message{ID: id, CreatedAt: at, SenderType: senderType, Body: "m-" + id}
}

func threadIDs(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.ID)
	}
	return out
}

func TestSnapshotAndPushOverlapExactlyOnce(t *testing.T) {
	base := time.Now()
	th := NewThread("conv-1")

	// push lands first, then the REST snapshot carries the same message
	require.True(t, th.Add(msg("m2", base.Add(2*time.Second), "support")))
	th.ApplySnapshot([]Message{
		msg("m1", base.Add(1*time.Second), "user"),
		msg("m2", base.Add(2*time.Second), "support"),
		msg("m3", base.Add(3*time.Second), "user"),
	})

	assert.Equal(t, []string{"m1", "m2", "m3"}, threadIDs(th.Messages()))
}

func TestDuplicatePushDiscarded(t *testing.T) {
	th := NewThread("conv-1")
	now := time.Now()

	require.True(t, th.Add(msg("m1", now, "user")))
	assert.False(t, th.Add(msg("m1", now, "user")))
	assert.False(t, th.Add(msg(" M1 ", now, "user")), "id comparison is normalized")
	assert.Equal(t, 1, th.Len())
}

func TestOrderingByCreatedAtWithIDTiebreak(t *testing.T) {
	base := time.Now()
	th := NewThread("conv-1")

	th.Add(msg("b", base, "user"))
	th.Add(msg("a", base, "user"))
	th.Add(msg("c", base.Add(-time.Second), "user"))

	assert.Equal(t, []string{"c", "a", "b"}, threadIDs(th.Messages()))
}

func TestSendConfirmRESTFirst(t *testing.T) {
	th := NewThread("conv-1")
	now := time.Now()

	localID := th.Send(Message{SenderType: "user", Body: "hello"})
	assert.Contains(t, localID, "pending-")

	msgs := th.Messages()
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Pending)

	// REST response arrives with the canonical message; the push copy of
	// the same id lands afterwards
	server := msg("srv-1", now, "user")
	th.Confirm(localID, server)
	assert.False(t, th.Add(server))

	msgs = th.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "srv-1", msgs[0].ID)
	assert.False(t, msgs[0].Pending, "confirmed message is indistinguishable from a fetched one")
}

func TestSendConfirmPushFirst(t *testing.T) {
	th := NewThread("conv-1")
	now := time.Now()

	localID := th.Send(Message{SenderType: "user", Body: "hello"})

	// own message comes back over the channel before the REST response
	server := msg("srv-1", now, "user")
	require.True(t, th.Add(server))
	th.Confirm(localID, server)

	msgs := th.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "srv-1", msgs[0].ID)
}

func TestFailReturnsContent(t *testing.T) {
	th := NewThread("conv-1")

	localID := th.Send(Message{SenderType: "user", Body: "draft text"})
	m, ok := th.Fail(localID)
	require.True(t, ok)
	assert.Equal(t, "draft text", m.Body)
	assert.Empty(t, th.Messages())

	_, ok = th.Fail(localID)
	assert.False(t, ok)
}

func TestPendingAppendedAfterConfirmed(t *testing.T) {
	base := time.Now()
	th := NewThread("conv-1")
	th.Add(msg("m1", base, "support"))

	first := th.Send(Message{Body: "one"})
	second := th.Send(Message{Body: "two"})

	msgs := th.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, first, msgs[1].ID)
	assert.Equal(t, second, msgs[2].ID)
}

func TestMarkReadCountsAndNoOp(t *testing.T) {
	base := time.Now()
	th := NewThread("conv-1")
	th.Add(msg("m1", base, "support"))
	th.Add(msg("m2", base.Add(time.Second), "support"))
	th.Add(msg("m3", base.Add(2*time.Second), "user"))

	readAt := time.Now()
	assert.Equal(t, 2, th.MarkRead("support", readAt))
	assert.Equal(t, 0, th.MarkRead("support", readAt), "second pass has nothing left to flip")
	assert.Equal(t, 0, th.UnreadFrom("support"))
	assert.Equal(t, 1, th.UnreadFrom("user"))

	for _, m := range th.Messages() {
		if m.SenderType == "support" {
			require.NotNil(t, m.ReadAt)
			assert.True(t, readAt.Equal(*m.ReadAt))
		}
	}
}
