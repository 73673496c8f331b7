package chatsync

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGateway records subscriptions and lets tests push events by channel.
type fakeGateway struct {
	mu       sync.Mutex
	handlers map[string][]Handler
	unsubs   int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{handlers: make(map[string][]Handler)}
}

func (g *fakeGateway) Subscribe(channel string, h Handler) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers[channel] = append(g.handlers[channel], h)
	idx := len(g.handlers[channel]) - 1
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.unsubs++
		hs := g.handlers[channel]
		if idx < len(hs) {
			g.handlers[channel] = append(append([]Handler(nil), hs[:idx]...), hs[idx+1:]...)
		}
	}, nil
}

func (g *fakeGateway) push(t *testing.T, channel, event string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	g.mu.Lock()
	hs := append([]Handler(nil), g.handlers[channel]...)
	g.mu.Unlock()
	for _, h := range hs {
		h(event, data)
	}
}

func (g *fakeGateway) handlerCount(channel string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.handlers[channel])
}

func TestSessionInboxEvents(t *testing.T) {
	gw := newFakeGateway()
	s := NewSession(gw, "user", nil, nil)
	require.NoError(t, s.WatchInbox())
	require.NoError(t, s.WatchInbox(), "watching twice binds one handler")
	assert.Equal(t, 1, gw.handlerCount(ChannelAdmin))

	gw.push(t, ChannelAdmin, EventNewConversation, Conversation{ID: "c1", Subject: "hello"})
	assert.Equal(t, 1, s.Inbox().Len())

	gw.push(t, ChannelAdmin, EventConversationUpdated, map[string]interface{}{
		"id": "c1", "status": "in_progress",
	})
	c, ok := s.Inbox().Get("c1")
	require.True(t, ok)
	assert.Equal(t, "in_progress", c.Status)

	gw.push(t, ChannelAdmin, EventConversationDeleted, map[string]interface{}{"id": "c1"})
	assert.Equal(t, 0, s.Inbox().Len())
}

func TestSessionMessageReceivedRouting(t *testing.T) {
	gw := newFakeGateway()

	var mu sync.Mutex
	var marked []string
	var notified []Notification

	s := NewSession(gw, "user",
		func(id string) { mu.Lock(); marked = append(marked, id); mu.Unlock() },
		func(n Notification) { mu.Lock(); notified = append(notified, n); mu.Unlock() },
	)
	require.NoError(t, s.WatchInbox())
	s.Inbox().ApplySnapshot([]Conversation{{ID: "c1"}, {ID: "c2"}})

	_, err := s.Open("c1")
	require.NoError(t, err)
	s.SetFocused(true)

	// delta for the open, focused conversation: unread clears, store called
	gw.push(t, ChannelAdmin, EventMessageReceived, MessageReceived{
		ConversationID: "c1", Status: "open", UnreadCount: 1, LastMessageBy: "user",
	})
	c, _ := s.Inbox().Get("c1")
	assert.Equal(t, 0, c.UnreadCount)
	mu.Lock()
	assert.Equal(t, []string{"c1"}, marked)
	assert.Empty(t, notified)
	mu.Unlock()

	// delta for a background conversation raises a notification instead
	gw.push(t, ChannelAdmin, EventMessageReceived, MessageReceived{
		ConversationID: "c2", Status: "open", UnreadCount: 1, LastMessageBy: "user",
	})
	c, _ = s.Inbox().Get("c2")
	assert.Equal(t, 1, c.UnreadCount)
	mu.Lock()
	require.Len(t, notified, 1)
	assert.Equal(t, "c2", notified[0].ConversationID)
	mu.Unlock()

	// same goes for an unfocused window
	s.SetFocused(false)
	gw.push(t, ChannelAdmin, EventMessageReceived, MessageReceived{
		ConversationID: "c1", Status: "open", UnreadCount: 2, LastMessageBy: "user",
	})
	mu.Lock()
	assert.Len(t, notified, 2)
	assert.Len(t, marked, 1)
	mu.Unlock()
}

func TestSessionOpenSwapsCurrentCell(t *testing.T) {
	gw := newFakeGateway()
	s := NewSession(gw, "user", nil, nil)

	_, ok := s.Current()
	assert.False(t, ok)

	_, err := s.Open("C1")
	require.NoError(t, err)
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "c1", cur)

	// opening the next conversation closes the previous channel first
	_, err = s.Open("c2")
	require.NoError(t, err)
	cur, _ = s.Current()
	assert.Equal(t, "c2", cur)
	assert.Equal(t, 0, gw.handlerCount(ChatChannel("c1")))
	assert.Equal(t, 1, gw.handlerCount(ChatChannel("c2")))

	s.CloseConversation()
	_, ok = s.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, gw.handlerCount(ChatChannel("c2")))
}

func TestSessionThreadEvents(t *testing.T) {
	gw := newFakeGateway()

	var mu sync.Mutex
	var notified []Notification
	s := NewSession(gw, "support", nil,
		func(n Notification) { mu.Lock(); notified = append(notified, n); mu.Unlock() })
	s.Inbox().ApplySnapshot([]Conversation{{ID: "c1"}})

	th, err := s.Open("c1")
	require.NoError(t, err)
	s.SetFocused(false)

	now := time.Now()
	counterpartMsg := Message{
		ID: "m1", ConversationID: "c1", SenderType: "support",
		Body: "hello", CreatedAt: now,
	}
	gw.push(t, ChatChannel("c1"), EventNewMessage, counterpartMsg)
	assert.Equal(t, 1, th.Len())
	mu.Lock()
	require.Len(t, notified, 1)
	assert.Equal(t, "hello", notified[0].Preview)
	mu.Unlock()

	// duplicate delivery of the same message: merged once, no second alert
	gw.push(t, ChatChannel("c1"), EventNewMessage, counterpartMsg)
	assert.Equal(t, 1, th.Len())
	mu.Lock()
	assert.Len(t, notified, 1)
	mu.Unlock()

	// a message for some other conversation on the same handler is dropped
	gw.push(t, ChatChannel("c1"), EventNewMessage, Message{
		ID: "m9", ConversationID: "c9", SenderType: "support", CreatedAt: now,
	})
	assert.Equal(t, 1, th.Len())

	// own message does not notify
	gw.push(t, ChatChannel("c1"), EventNewMessage, Message{
		ID: "m2", ConversationID: "c1", SenderType: "user", CreatedAt: now.Add(time.Second),
	})
	assert.Equal(t, 2, th.Len())
	mu.Lock()
	assert.Len(t, notified, 1)
	mu.Unlock()

	// typing flag rises and is readable through the session
	gw.push(t, ChatChannel("c1"), EventTyping, map[string]string{"role": "support"})
	assert.True(t, s.TypingActive())

	// counterpart's read receipt flips own messages
	readAt := time.Now()
	gw.push(t, ChatChannel("c1"), EventMessageRead, map[string]interface{}{
		"senderType": "user", "readAt": readAt,
	})
	for _, m := range th.Messages() {
		if m.SenderType == "user" {
			assert.True(t, m.Read)
		}
	}
}

func TestSessionTypingIgnoresOwnEcho(t *testing.T) {
	gw := newFakeGateway()
	s := NewSession(gw, "user", nil, nil) // operator: counterpart is the end user
	s.Inbox().ApplySnapshot([]Conversation{{ID: "c1"}})

	_, err := s.Open("c1")
	require.NoError(t, err)

	// the channel echoes the operator's own keystrokes back
	gw.push(t, ChatChannel("c1"), EventTyping, map[string]string{"role": "support"})
	assert.False(t, s.TypingActive())

	gw.push(t, ChatChannel("c1"), EventTyping, map[string]string{"role": "user"})
	assert.True(t, s.TypingActive())
}

func TestSessionReadReceiptOnlyFlipsOwnMessages(t *testing.T) {
	gw := newFakeGateway()
	s := NewSession(gw, "support", nil, nil) // widget viewer: own messages are "user"

	th, err := s.Open("c1")
	require.NoError(t, err)

	now := time.Now()
	th.ApplySnapshot([]Message{
		{ID: "m1", ConversationID: "c1", SenderType: "user", CreatedAt: now},
		{ID: "m2", ConversationID: "c1", SenderType: "support", CreatedAt: now.Add(time.Second)},
	})

	// the viewer's own mark-as-read echo names the counterpart's messages
	// and must not touch anything locally
	gw.push(t, ChatChannel("c1"), EventMessageRead, map[string]interface{}{
		"senderType": "support", "readAt": now,
	})
	for _, m := range th.Messages() {
		assert.False(t, m.Read)
	}

	// the counterpart's receipt flips only the viewer's outgoing messages
	gw.push(t, ChatChannel("c1"), EventMessageRead, map[string]interface{}{
		"senderType": "user", "readAt": now,
	})
	for _, m := range th.Messages() {
		switch m.SenderType {
		case "user":
			assert.True(t, m.Read)
		case "support":
			assert.False(t, m.Read)
		}
	}
}

func TestSessionRejectsReuseAfterClose(t *testing.T) {
	gw := newFakeGateway()
	s := NewSession(gw, "user", nil, nil)
	require.NoError(t, s.WatchInbox())
	_, err := s.Open("c1")
	require.NoError(t, err)

	s.Close()

	assert.ErrorIs(t, s.WatchInbox(), ErrSessionClosed)
	_, err = s.Open("c2")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, 0, gw.handlerCount(ChannelAdmin))
	assert.Equal(t, 0, gw.handlerCount(ChatChannel("c2")))
}

func TestSessionCloseUnbindsEverything(t *testing.T) {
	gw := newFakeGateway()
	s := NewSession(gw, "user", nil, nil)
	require.NoError(t, s.WatchInbox())
	_, err := s.Open("c1")
	require.NoError(t, err)

	s.Close()

	assert.Equal(t, 0, gw.handlerCount(ChannelAdmin))
	assert.Equal(t, 0, gw.handlerCount(ChatChannel("c1")))
	assert.Equal(t, 2, gw.unsubs)
	assert.False(t, s.TypingActive())
}

func TestCell(t *testing.T) {
	var c Cell[string]

	_, ok := c.Load()
	assert.False(t, ok)

	c.Store("a")
	v, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, "a", v)

	c.Store("b")
	v, _ = c.Load()
	assert.Equal(t, "b", v)

	c.Clear()
	_, ok = c.Load()
	assert.False(t, ok)
}
