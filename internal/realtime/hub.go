package realtime

import (
	"log"
	"sync"
)

type Client struct {
	ID     string
	UserID string
	Role   string
	Conn   *WebSocketConn
	Send   chan []byte

	channels map[string]struct{}
}

// Hub fans envelopes out to websocket clients by named channel. Clients
// subscribe to `chat-{conversationId}` while a conversation is open and
// operators additionally to `admin-support`.
type Hub struct {
	clients    map[string]*Client
	channels   map[string]map[string]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		channels:   make(map[string]map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) RegisterClient(client *Client) {
	client.channels = make(map[string]struct{})
	h.register <- client
}

func (h *Hub) UnregisterClient(client *Client) {
	h.unregister <- client
}

// Subscribe joins the client to a channel. Idempotent.
func (h *Hub) Subscribe(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	members, ok := h.channels[channel]
	if !ok {
		members = make(map[string]*Client)
		h.channels[channel] = members
	}
	members[client.ID] = client
	client.channels[channel] = struct{}{}
}

// Unsubscribe removes the client from a channel; no handler survives a
// conversation close.
func (h *Hub) Unsubscribe(client *Client, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(client, channel)
}

func (h *Hub) unsubscribeLocked(client *Client, channel string) {
	if members, ok := h.channels[channel]; ok {
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
	delete(client.channels, channel)
}

// Broadcast delivers an already-encoded envelope to every member of the
// channel. Slow consumers are skipped, not blocked on.
func (h *Hub) Broadcast(channel string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.channels[channel] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("Client registered: %s (user: %s)", client.ID, client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if old, ok := h.clients[client.ID]; ok {
				for ch := range old.channels {
					h.unsubscribeLocked(old, ch)
				}
				delete(h.clients, client.ID)
				close(old.Send)
				log.Printf("Client unregistered: %s", client.ID)
			}
			h.mu.Unlock()
		}
	}
}
