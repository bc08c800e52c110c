// Package clock provides an abstraction for time and deferred execution to
// enable deterministic testing of debounce behavior without wall-clock delays.
package clock

import (
	"sort"
	"sync"
	"time"
)

// Timer is a handle to a deferred function scheduled with AfterFunc.
type Timer interface {
	// Stop cancels the timer. It reports whether the call stopped the timer
	// before it fired.
	Stop() bool
}

// Clock provides current time and timer scheduling.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// AfterFunc schedules fn to run after d elapses.
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealClock implements Clock using the system time.
type RealClock struct{}

// Now returns the current system time.
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules fn on a real time.Timer.
func (c *RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// FakeClock implements Clock with manually advanced time for testing.
// Timers scheduled via AfterFunc fire synchronously inside Advance once
// their deadline is reached.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*fakeTimer
}

type fakeTimer struct {
	clock   *FakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

// Stop cancels the fake timer.
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// NewFakeClock creates a new FakeClock starting at the given time.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set updates the fake time without firing timers.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// AfterFunc registers fn to fire once the fake time advances past d.
func (c *FakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.current.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the fake time forward and fires any timers whose deadline
// falls within the advanced window, in deadline order. Callbacks run on the
// caller's goroutine without the clock lock held, so they may schedule
// further timers.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	deadline := c.current
	c.mu.Unlock()

	for {
		t := c.popDue(deadline)
		if t == nil {
			return
		}
		t.fn()
	}
}

// popDue removes and returns the earliest unfired timer due at or before
// deadline, or nil when none remain.
func (c *FakeClock) popDue(deadline time.Time) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].at.Before(c.timers[j].at)
	})
	for _, t := range c.timers {
		if t.stopped || t.fired {
			continue
		}
		if t.at.After(deadline) {
			continue
		}
		t.fired = true
		return t
	}
	return nil
}

// Pending returns the number of timers that are scheduled but not yet fired
// or stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}
