package chatsync

import "sync/atomic"

// Cell is an atomically updated latest-value slot. The long-lived gateway
// handler is bound once per subscription, so it cannot close over the
// conversation the operator has open right now; it reads this cell instead.
// Single writer (the UI opening/closing conversations), many readers.
type Cell[T any] struct {
	v atomic.Pointer[T]
}

func (c *Cell[T]) Store(val T) {
	c.v.Store(&val)
}

func (c *Cell[T]) Load() (T, bool) {
	p := c.v.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

func (c *Cell[T]) Clear() {
	c.v.Store(nil)
}
