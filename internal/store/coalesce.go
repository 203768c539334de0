package store

import (
	"sync"
	"time"

	"rackcatalog/pkg/catalog"
)

// DefaultCoalesceDelay is the window during which rapid successive writes to
// an async backend collapse into a single durable write.
const DefaultCoalesceDelay = 250 * time.Millisecond

// coalescer holds at most one pending write job. Scheduling a new state
// replaces the pending one and restarts the timer, so only the latest state is
// ever flushed; intermediate states inside the window are never separately
// persisted.
type coalescer struct {
	mu      sync.Mutex
	delay   time.Duration
	flush   func(catalog.State)
	timer   *time.Timer
	pending *catalog.State
	stopped bool
}

func newCoalescer(delay time.Duration, flush func(catalog.State)) *coalescer {
	return &coalescer{delay: delay, flush: flush}
}

// Schedule replaces any pending write with st and (re)arms the timer.
func (c *coalescer) Schedule(st catalog.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.pending = &st
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.fire)
}

func (c *coalescer) fire() {
	c.mu.Lock()
	st := c.pending
	c.pending = nil
	c.timer = nil
	c.mu.Unlock()
	if st != nil {
		c.flush(*st)
	}
}

// Pending reports whether a write is waiting on the timer.
func (c *coalescer) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Flush synchronously writes the pending state, if any, without waiting for
// the timer.
func (c *coalescer) Flush() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	st := c.pending
	c.pending = nil
	c.mu.Unlock()
	if st != nil {
		c.flush(*st)
	}
}

// Stop flushes any pending write and prevents further scheduling.
func (c *coalescer) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	st := c.pending
	c.pending = nil
	c.mu.Unlock()
	if st != nil {
		c.flush(*st)
	}
}
