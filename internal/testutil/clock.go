package testutil

import (
	"sync"
	"time"
)

// KST is the storefront time zone.
var KST = time.FixedZone("KST", 9*60*60)

// Clock is a manually driven time source. Pass c.Now wherever a
// func() time.Time is accepted.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock starts at start, or at 2026-03-01 09:00 KST when omitted.
func NewClock(start ...time.Time) *Clock {
	c := &Clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, KST)}
	if len(start) > 0 {
		c.now = start[0]
	}
	return c
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.Tick(d)
}

// Tick advances the clock by d and returns the new time.
func (c *Clock) Tick(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set jumps to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
