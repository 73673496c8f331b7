package chatsync

import (
	"sync"
	"time"
)

// TypingTTL is how long a typing flag stays up without a refresh.
const TypingTTL = 3 * time.Second

// TypingIndicator is the self-expiring "counterpart is typing" flag. Every
// typing event refreshes the timer; silence clears it. Never persisted.
type TypingIndicator struct {
	mu       sync.Mutex
	active   bool
	timer    *time.Timer
	ttl      time.Duration
	onChange func(bool)
	closed   bool
}

// NewTypingIndicator builds an indicator with the default TTL. onChange may
// be nil; when set it fires on every rise and fall of the flag.
func NewTypingIndicator(onChange func(bool)) *TypingIndicator {
	return &TypingIndicator{ttl: TypingTTL, onChange: onChange}
}

// Pulse raises the flag and re-arms the expiry. Repeated pulses debounce
// into a single active period.
func (t *TypingIndicator) Pulse() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	rose := !t.active
	t.active = true
	if t.timer == nil {
		t.timer = time.AfterFunc(t.ttl, t.expire)
	} else {
		t.timer.Reset(t.ttl)
	}
	cb := t.onChange
	t.mu.Unlock()

	if rose && cb != nil {
		cb(true)
	}
}

func (t *TypingIndicator) expire() {
	t.mu.Lock()
	if t.closed || !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	cb := t.onChange
	t.mu.Unlock()

	if cb != nil {
		cb(false)
	}
}

func (t *TypingIndicator) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Close stops the timer so nothing fires after unmount.
func (t *TypingIndicator) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.active = false
	if t.timer != nil {
		t.timer.Stop()
	}
}
