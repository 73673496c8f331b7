package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id string) *Client {
	return &Client{ID: id, Send: make(chan []byte, 8)}
}

func waitDelivery(t *testing.T, hub *Hub, client *Client, channel string) {
	t.Helper()
	// registration goes through the run loop, so retry until it lands
	require.Eventually(t, func() bool {
		hub.Subscribe(client, channel)
		hub.Broadcast(channel, []byte("probe"))
		select {
		case <-client.Send:
			return true
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func drain(client *Client) {
	for {
		select {
		case <-client.Send:
		default:
			return
		}
	}
}

func TestHubBroadcastReachesChannelMembers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient("a")
	b := newTestClient("b")
	hub.RegisterClient(a)
	hub.RegisterClient(b)
	waitDelivery(t, hub, a, "chat-1")
	waitDelivery(t, hub, b, "chat-1")
	drain(a)
	drain(b)

	hub.Broadcast("chat-1", []byte("hello"))

	assert.Equal(t, []byte("hello"), <-a.Send)
	assert.Equal(t, []byte("hello"), <-b.Send)
}

func TestHubChannelsAreIsolated(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient("a")
	hub.RegisterClient(a)
	waitDelivery(t, hub, a, "chat-1")
	drain(a)

	hub.Broadcast("chat-2", []byte("elsewhere"))

	select {
	case msg := <-a.Send:
		t.Fatalf("client got message from a channel it never joined: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient("a")
	hub.RegisterClient(a)
	waitDelivery(t, hub, a, "chat-1")
	drain(a)

	hub.Unsubscribe(a, "chat-1")
	hub.Broadcast("chat-1", []byte("after"))

	select {
	case msg := <-a.Send:
		t.Fatalf("delivery after unsubscribe: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubSkipsSlowConsumer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{ID: "slow", Send: make(chan []byte, 1)}
	fast := newTestClient("fast")
	hub.RegisterClient(slow)
	hub.RegisterClient(fast)
	waitDelivery(t, hub, slow, "chat-1")
	waitDelivery(t, hub, fast, "chat-1")
	drain(slow)
	drain(fast)

	slow.Send <- []byte("backlog") // fills the buffer

	done := make(chan struct{})
	go func() {
		hub.Broadcast("chat-1", []byte("x"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a slow consumer")
	}
	assert.Equal(t, []byte("x"), <-fast.Send)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	a := newTestClient("a")
	hub.RegisterClient(a)
	waitDelivery(t, hub, a, "chat-1")
	drain(a)

	hub.UnregisterClient(a)

	require.Eventually(t, func() bool {
		select {
		case _, open := <-a.Send:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	// channel membership is gone with the client
	hub.Broadcast("chat-1", []byte("ghost"))
}
