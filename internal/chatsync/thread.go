package chatsync

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ashanV/bookly-sub002/internal/models"
)

// Message is the client-side view of a thread entry.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversationId"`
	SenderID       string     `json:"senderId"`
	SenderType     string     `json:"senderType"`
	SenderName     string     `json:"senderName"`
	Type           string     `json:"type"`
	Body           string     `json:"message"`
	FileURL        string     `json:"fileUrl,omitempty"`
	GifURL         string     `json:"gifUrl,omitempty"`
	Read           bool       `json:"read"`
	ReadAt         *time.Time `json:"readAt"`
	CreatedAt      time.Time  `json:"createdAt"`

	// Pending marks an optimistic local message awaiting server
	// confirmation.
	Pending bool `json:"-"`
}

// Thread is the message timeline of a single conversation. Confirmed
// messages stay totally ordered by createdAt (id as tiebreaker) and each id
// appears exactly once no matter how REST responses and push events
// interleave. Pending sends live apart until confirmed.
type Thread struct {
	mu             sync.Mutex
	conversationID string
	msgs           []Message
	seen           map[string]struct{}
	pending        map[string]Message // local id -> optimistic message
	pendingOrder   []string
}

func NewThread(conversationID string) *Thread {
	return &Thread{
		conversationID: models.NormalizeID(conversationID),
		seen:           make(map[string]struct{}),
		pending:        make(map[string]Message),
	}
}

func (t *Thread) ConversationID() string { return t.conversationID }

// ApplySnapshot merges a full REST fetch. Overlapping ids with previously
// pushed messages are suppressed, never duplicated.
func (t *Thread) ApplySnapshot(msgs []Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, m := range msgs {
		t.insertLocked(m)
	}
}

// Add merges one pushed message. Returns false when the id was already
// present (duplicate delivery).
func (t *Thread) Add(m Message) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.insertLocked(m)
}

func (t *Thread) insertLocked(m Message) bool {
	m.ID = models.NormalizeID(m.ID)
	if m.ID == "" {
		return false
	}
	if _, dup := t.seen[m.ID]; dup {
		return false
	}
	t.seen[m.ID] = struct{}{}
	m.Pending = false

	// Insert keeping createdAt order; ties break on id so every replica
	// settles on the same order.
	idx := sort.Search(len(t.msgs), func(i int) bool {
		if t.msgs[i].CreatedAt.Equal(m.CreatedAt) {
			return t.msgs[i].ID > m.ID
		}
		return t.msgs[i].CreatedAt.After(m.CreatedAt)
	})
	t.msgs = append(t.msgs, Message{})
	copy(t.msgs[idx+1:], t.msgs[idx:])
	t.msgs[idx] = m
	return true
}

// Send registers an optimistic local message and returns its local id.
// The caller runs the REST call and then either Confirm or Fail.
func (t *Thread) Send(m Message) string {
	t.mu.Lock()
	defer t.mu.Unlock()

	localID := "pending-" + uuid.NewString()
	m.ID = localID
	m.ConversationID = t.conversationID
	m.Pending = true
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	t.pending[localID] = m
	t.pendingOrder = append(t.pendingOrder, localID)
	return localID
}

// Confirm reconciles a pending send with the canonical server message. The
// push event for one's own message may land before or after the REST
// response; either way the thread ends up with exactly one copy.
func (t *Thread) Confirm(localID string, server Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.dropPendingLocked(localID)
	t.insertLocked(server)
}

// Fail abandons a pending send and returns its content so the caller can
// restore the input instead of losing the text.
func (t *Thread) Fail(localID string) (Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.pending[localID]
	if !ok {
		return Message{}, false
	}
	t.dropPendingLocked(localID)
	return m, true
}

func (t *Thread) dropPendingLocked(localID string) {
	if _, ok := t.pending[localID]; !ok {
		return
	}
	delete(t.pending, localID)
	for i, id := range t.pendingOrder {
		if id == localID {
			t.pendingOrder = append(t.pendingOrder[:i], t.pendingOrder[i+1:]...)
			break
		}
	}
}

// MarkRead flips the read flag on counterpart messages. counterpart is the
// senderType whose messages the viewer just saw. Returns how many changed;
// zero means no store call is needed.
func (t *Thread) MarkRead(counterpart string, readAt time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for i := range t.msgs {
		if t.msgs[i].SenderType == counterpart && !t.msgs[i].Read {
			t.msgs[i].Read = true
			at := readAt
			t.msgs[i].ReadAt = &at
			n++
		}
	}
	return n
}

// UnreadFrom counts unseen messages from the given sender type.
func (t *Thread) UnreadFrom(counterpart string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for i := range t.msgs {
		if t.msgs[i].SenderType == counterpart && !t.msgs[i].Read {
			n++
		}
	}
	return n
}

// Messages returns the confirmed timeline with pending sends appended at
// the end, in submission order.
func (t *Thread) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Message, 0, len(t.msgs)+len(t.pendingOrder))
	out = append(out, t.msgs...)
	for _, id := range t.pendingOrder {
		out = append(out, t.pending[id])
	}
	return out
}

func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.msgs)
}
