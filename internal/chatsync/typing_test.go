package chatsync

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shortIndicator builds an indicator with a tiny TTL so expiry tests do
// not wait the real 3s.
func shortIndicator(ttl time.Duration, onChange func(bool)) *TypingIndicator {
	return &TypingIndicator{ttl: ttl, onChange: onChange}
}

func TestTypingDefaultTTL(t *testing.T) {
	assert.Equal(t, 3*time.Second, TypingTTL)
}

func TestTypingPulseAndExpiry(t *testing.T) {
	var mu sync.Mutex
	var changes []bool
	ti := shortIndicator(30*time.Millisecond, func(v bool) {
		mu.Lock()
		changes = append(changes, v)
		mu.Unlock()
	})
	defer ti.Close()

	ti.Pulse()
	assert.True(t, ti.Active())

	require.Eventually(t, func() bool { return !ti.Active() }, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, changes)
}

func TestTypingPulseDebounces(t *testing.T) {
	var mu sync.Mutex
	rises := 0
	ti := shortIndicator(50*time.Millisecond, func(v bool) {
		if v {
			mu.Lock()
			rises++
			mu.Unlock()
		}
	})
	defer ti.Close()

	for i := 0; i < 5; i++ {
		ti.Pulse()
		time.Sleep(10 * time.Millisecond)
	}
	assert.True(t, ti.Active(), "refreshed pulses keep the flag up past the first TTL")

	mu.Lock()
	assert.Equal(t, 1, rises, "a burst of pulses is one active period")
	mu.Unlock()

	require.Eventually(t, func() bool { return !ti.Active() }, time.Second, 5*time.Millisecond)
}

func TestTypingCloseStopsTimer(t *testing.T) {
	fired := make(chan bool, 4)
	ti := shortIndicator(20*time.Millisecond, func(v bool) { fired <- v })

	ti.Pulse()
	<-fired // rise
	ti.Close()

	assert.False(t, ti.Active())
	select {
	case v := <-fired:
		t.Fatalf("onChange fired after Close: %v", v)
	case <-time.After(60 * time.Millisecond):
	}

	// pulses after close are ignored
	ti.Pulse()
	assert.False(t, ti.Active())
}
