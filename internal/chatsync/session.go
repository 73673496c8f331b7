package chatsync

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashanV/bookly-sub002/internal/models"
)

// ErrSessionClosed is returned when a torn-down session is reused.
var ErrSessionClosed = errors.New("chatsync: session closed")

// Event names delivered by the realtime gateway. Delivery is at-least-once
// with no cross-channel ordering; the merge rules below absorb both.
const (
	EventNewConversation     = "new-conversation"
	EventConversationUpdated = "conversation-updated"
	EventConversationDeleted = "conversation-deleted"
	EventMessageReceived     = "message-received"
	EventNewMessage          = "new-message"
	EventTyping              = "typing"
	EventMessageRead         = "message-read"
)

// ChannelAdmin is the process-wide operator channel; each open conversation
// additionally gets its own channel.
const ChannelAdmin = "admin-support"

func ChatChannel(conversationID string) string {
	return "chat-" + models.NormalizeID(conversationID)
}

// Handler receives one gateway event on a subscribed channel.
type Handler func(event string, data []byte)

// Gateway is the hosted pub/sub service as seen from the client. Subscribe
// binds a handler and returns the matching unbind; Close of the returned
// func must leave no handler behind.
type Gateway interface {
	Subscribe(channel string, h Handler) (func(), error)
}

// Notification asks the host environment to alert the user (sound, OS
// notification) about activity outside the open, focused conversation.
type Notification struct {
	ConversationID string
	Preview        string
}

// Session owns one client's view: the inbox, at most one open thread, the
// typing flag of the counterpart, and the gateway subscriptions. The admin
// handler is bound exactly once and resolves "is this for the conversation
// the user has open" through the current-id cell, so state changes never
// force a re-subscribe.
type Session struct {
	gw    Gateway
	inbox *Inbox

	// counterpart is the sender type whose messages count as unread for
	// this viewer: "user" for an operator session, "support" for the
	// widget.
	counterpart string

	current Cell[string]
	focused atomic.Bool

	mu          sync.Mutex
	thread      *Thread
	typing      *TypingIndicator
	inboxUnsub  func()
	threadUnsub func()
	closed      bool

	onMarkRead func(conversationID string)
	onNotify   func(Notification)
}

// NewSession wires a session. markRead is the REST mark-as-read call issued
// when a message lands in the open, focused conversation; notify fires for
// everything else. Either may be nil.
func NewSession(gw Gateway, counterpart string, markRead func(string), notify func(Notification)) *Session {
	return &Session{
		gw:          gw,
		inbox:       NewInbox(),
		counterpart: counterpart,
		onMarkRead:  markRead,
		onNotify:    notify,
	}
}

func (s *Session) Inbox() *Inbox { return s.inbox }

func (s *Session) SetFocused(f bool) { s.focused.Store(f) }

func (s *Session) Current() (string, bool) { return s.current.Load() }

// TypingActive reports the counterpart's typing flag for the open thread.
func (s *Session) TypingActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.typing != nil && s.typing.Active()
}

// WatchInbox binds the process-wide conversation-list subscription.
func (s *Session) WatchInbox() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.inboxUnsub != nil {
		return nil
	}
	unsub, err := s.gw.Subscribe(ChannelAdmin, s.handleInboxEvent)
	if err != nil {
		return err
	}
	s.inboxUnsub = unsub
	return nil
}

func (s *Session) handleInboxEvent(event string, data []byte) {
	switch event {
	case EventNewConversation:
		var c Conversation
		if err := json.Unmarshal(data, &c); err != nil {
			log.Println("chatsync: bad new-conversation payload:", err)
			return
		}
		s.inbox.Add(c)

	case EventConversationUpdated:
		var p struct {
			ID string `json:"id"`
			ConversationPatch
		}
		if err := json.Unmarshal(data, &p); err != nil {
			log.Println("chatsync: bad conversation-updated payload:", err)
			return
		}
		s.inbox.Patch(p.ID, p.ConversationPatch)

	case EventConversationDeleted:
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		s.inbox.Remove(p.ID)

	case EventMessageReceived:
		var ev MessageReceived
		if err := json.Unmarshal(data, &ev); err != nil {
			log.Println("chatsync: bad message-received payload:", err)
			return
		}
		s.inbox.MessageReceived(ev)

		// Read-state propagation: open + focused conversations are
		// read immediately; everything else raises a notification.
		cur, ok := s.current.Load()
		if ok && models.NormalizeID(ev.ConversationID) == cur && s.focused.Load() {
			if s.inbox.ResetUnread(ev.ConversationID) && s.onMarkRead != nil {
				s.onMarkRead(ev.ConversationID)
			}
			return
		}
		if s.onNotify != nil {
			s.onNotify(Notification{ConversationID: models.NormalizeID(ev.ConversationID)})
		}
	}
}

// Open subscribes the per-conversation channel and makes it current. Any
// previously open conversation is closed first; its handlers are unbound.
func (s *Session) Open(conversationID string) (*Thread, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSessionClosed
	}
	s.mu.Unlock()
	s.closeThreadLocked()

	id := models.NormalizeID(conversationID)
	th := NewThread(id)
	ti := NewTypingIndicator(nil)

	unsub, err := s.gw.Subscribe(ChatChannel(id), func(event string, data []byte) {
		s.handleThreadEvent(th, ti, event, data)
	})
	if err != nil {
		ti.Close()
		return nil, err
	}

	s.mu.Lock()
	s.thread = th
	s.typing = ti
	s.threadUnsub = unsub
	s.mu.Unlock()
	s.current.Store(id)
	return th, nil
}

func (s *Session) handleThreadEvent(th *Thread, ti *TypingIndicator, event string, data []byte) {
	switch event {
	case EventNewMessage:
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			log.Println("chatsync: bad new-message payload:", err)
			return
		}
		if models.NormalizeID(m.ConversationID) != th.ConversationID() {
			return
		}
		if !th.Add(m) {
			return // duplicate delivery
		}
		if m.SenderType != s.counterpart {
			return
		}
		cur, ok := s.current.Load()
		if ok && cur == th.ConversationID() && s.focused.Load() {
			if s.onMarkRead != nil {
				s.onMarkRead(th.ConversationID())
			}
			s.inbox.ResetUnread(th.ConversationID())
			return
		}
		if s.onNotify != nil {
			s.onNotify(Notification{
				ConversationID: th.ConversationID(),
				Preview:        m.Body,
			})
		}

	case EventTyping:
		var p struct {
			Role string `json:"role"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		// The channel carries the typist's own echo too; only the
		// counterpart raises the flag.
		if p.Role != s.counterpart {
			return
		}
		ti.Pulse()

	case EventMessageRead:
		var p struct {
			SenderType string    `json:"senderType"`
			ReadAt     time.Time `json:"readAt"`
		}
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		// senderType names whose messages were flipped. The reader's own
		// echo carries the counterpart's type and must not mark this
		// viewer's outgoing messages.
		if p.SenderType != s.viewerType() {
			return
		}
		th.MarkRead(s.viewerType(), p.ReadAt)
	}
}

// viewerType is the sender type of this session's own messages.
func (s *Session) viewerType() string {
	if s.counterpart == string(models.SenderUser) {
		return string(models.SenderSupport)
	}
	return string(models.SenderUser)
}

// CloseConversation unbinds the per-conversation subscription and clears
// the current cell. Safe to call when nothing is open.
func (s *Session) CloseConversation() {
	s.closeThreadLocked()
	s.current.Clear()
}

func (s *Session) closeThreadLocked() {
	s.mu.Lock()
	unsub := s.threadUnsub
	ti := s.typing
	s.threadUnsub = nil
	s.thread = nil
	s.typing = nil
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if ti != nil {
		ti.Close()
	}
}

// Close tears the whole session down; no handler survives.
func (s *Session) Close() {
	s.CloseConversation()
	s.mu.Lock()
	unsub := s.inboxUnsub
	s.inboxUnsub = nil
	s.closed = true
	s.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}
