// Package chatsync keeps a local, order-consistent, duplicate-free view of
// conversations and messages, fed by two concurrent sources: full REST
// snapshots and single-delta push events from the realtime gateway. It is
// the client half of the support-chat contract; the operator console and
// the end-user widget both run on it.
package chatsync

import (
	"sync"
	"time"

	"github.com/ashanV/bookly-sub002/internal/models"
)

// Conversation is the client-side view of a support thread. IDs are plain
// strings, normalized once on entry (see models.NormalizeID).
type Conversation struct {
	ID            string    `json:"id"`
	Subject       string    `json:"subject"`
	Category      string    `json:"category"`
	Status        string    `json:"status"`
	Priority      string    `json:"priority"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	UserType      string    `json:"userType"`
	UserAvatar    string    `json:"userAvatar,omitempty"`
	SupportID     *string   `json:"supportId"`
	SupportName   *string   `json:"supportName"`
	UnreadCount   int       `json:"unreadCount"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	LastMessageBy string    `json:"lastMessageBy"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ConversationPatch is a field-level update. Nil fields are untouched;
// applying the same patch twice yields the same state.
type ConversationPatch struct {
	Subject       *string    `json:"subject,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
	SupportID     *string    `json:"supportId,omitempty"`
	SupportName   *string    `json:"supportName,omitempty"`
	UnreadCount   *int       `json:"unreadCount,omitempty"`
	LastMessageAt *time.Time `json:"lastMessageAt,omitempty"`
	LastMessageBy *string    `json:"lastMessageBy,omitempty"`
}

// MessageReceived is the conversation-level delta pushed when a message
// lands in a thread the viewer does not have open.
type MessageReceived struct {
	ConversationID string    `json:"conversationId"`
	LastMessageAt  time.Time `json:"lastMessageAt"`
	LastMessageBy  string    `json:"lastMessageBy"`
	Status         string    `json:"status"`
	UnreadCount    int       `json:"unreadCount"`
}

// Inbox is the conversation list. All mutations funnel through it, whether
// they originate from a fetch or from a push event, so the two sources can
// interleave freely without duplicating or losing entries.
type Inbox struct {
	mu    sync.Mutex
	order []string // head = most recently active
	byID  map[string]*Conversation
}

func NewInbox() *Inbox {
	return &Inbox{byID: make(map[string]*Conversation)}
}

// ApplySnapshot replaces the list with a full REST response, keeping the
// snapshot's own order. Duplicate ids inside the snapshot collapse to the
// first occurrence.
func (in *Inbox) ApplySnapshot(convs []Conversation) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.order = in.order[:0]
	in.byID = make(map[string]*Conversation, len(convs))
	for i := range convs {
		c := convs[i]
		c.ID = models.NormalizeID(c.ID)
		if c.ID == "" {
			continue
		}
		if _, ok := in.byID[c.ID]; ok {
			continue
		}
		in.byID[c.ID] = &c
		in.order = append(in.order, c.ID)
	}
}

// Add handles a new-conversation event. Creation events for an id already
// present are discarded, not merged.
func (in *Inbox) Add(c Conversation) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	c.ID = models.NormalizeID(c.ID)
	if c.ID == "" {
		return false
	}
	if _, ok := in.byID[c.ID]; ok {
		return false
	}
	in.byID[c.ID] = &c
	in.order = append([]string{c.ID}, in.order...)
	return true
}

// Patch applies a conversation-updated event. Unknown ids are ignored; the
// next snapshot will carry them.
func (in *Inbox) Patch(id string, p ConversationPatch) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	c, ok := in.byID[models.NormalizeID(id)]
	if !ok {
		return false
	}
	applyPatch(c, p)
	return true
}

func applyPatch(c *Conversation, p ConversationPatch) {
	if p.Subject != nil {
		c.Subject = *p.Subject
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Priority != nil {
		c.Priority = *p.Priority
	}
	if p.SupportID != nil {
		if *p.SupportID == "" {
			c.SupportID = nil
			c.SupportName = nil
		} else {
			v := models.NormalizeID(*p.SupportID)
			c.SupportID = &v
		}
	}
	if p.SupportName != nil && c.SupportID != nil {
		v := *p.SupportName
		c.SupportName = &v
	}
	if p.UnreadCount != nil {
		n := *p.UnreadCount
		if n < 0 {
			n = 0
		}
		c.UnreadCount = n
	}
	if p.LastMessageAt != nil {
		c.LastMessageAt = *p.LastMessageAt
	}
	if p.LastMessageBy != nil {
		c.LastMessageBy = *p.LastMessageBy
	}
}

// Remove handles a conversation-deleted event.
func (in *Inbox) Remove(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	key := models.NormalizeID(id)
	if _, ok := in.byID[key]; !ok {
		return false
	}
	delete(in.byID, key)
	for i, v := range in.order {
		if v == key {
			in.order = append(in.order[:i], in.order[i+1:]...)
			break
		}
	}
	return true
}

// MessageReceived patches the conversation and moves it to the head of the
// list, preserving the relative order of everything else. A conversation
// the inbox has not seen yet is prepended verbatim as a stub; the next
// snapshot fills in the rest.
func (in *Inbox) MessageReceived(ev MessageReceived) {
	in.mu.Lock()
	defer in.mu.Unlock()

	key := models.NormalizeID(ev.ConversationID)
	if key == "" {
		return
	}
	c, ok := in.byID[key]
	if !ok {
		c = &Conversation{
			ID:            key,
			Status:        ev.Status,
			UnreadCount:   ev.UnreadCount,
			LastMessageAt: ev.LastMessageAt,
			LastMessageBy: ev.LastMessageBy,
		}
		in.byID[key] = c
		in.order = append([]string{key}, in.order...)
		return
	}

	c.Status = ev.Status
	c.LastMessageAt = ev.LastMessageAt
	c.LastMessageBy = ev.LastMessageBy
	if ev.UnreadCount >= 0 {
		c.UnreadCount = ev.UnreadCount
	}

	for i, v := range in.order {
		if v == key {
			in.order = append(in.order[:i], in.order[i+1:]...)
			break
		}
	}
	in.order = append([]string{key}, in.order...)
}

// ResetUnread zeroes the unread counter, e.g. after a successful
// mark-as-read call. Returns false when there was nothing to clear, so the
// caller can skip the network call entirely.
func (in *Inbox) ResetUnread(id string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	c, ok := in.byID[models.NormalizeID(id)]
	if !ok || c.UnreadCount == 0 {
		return false
	}
	c.UnreadCount = 0
	return true
}

// Get returns a copy of the conversation.
func (in *Inbox) Get(id string) (Conversation, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	c, ok := in.byID[models.NormalizeID(id)]
	if !ok {
		return Conversation{}, false
	}
	return *c, true
}

// List returns the conversations in display order, head first.
func (in *Inbox) List() []Conversation {
	in.mu.Lock()
	defer in.mu.Unlock()

	out := make([]Conversation, 0, len(in.order))
	for _, id := range in.order {
		out = append(out, *in.byID[id])
	}
	return out
}

func (in *Inbox) Len() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.order)
}
