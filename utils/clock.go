package utils

import (
	"sort"
	"sync"
	"time"
)

// Timer is a scheduled callback which can be stopped
type Timer interface {
	Stop() bool
}

// Clock provides the current time and delayed callbacks
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// SystemClock returns a clock backed by the time package
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// ManualClock is a clock which only moves when Advance is called. Timers
// fire synchronously on the goroutine calling Advance, in deadline order.
type ManualClock struct {
	sync.Mutex
	now    time.Time
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	seq      int
	f        func()
}

// NewManualClock returns a manual clock starting at the given time
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.Lock()
	defer c.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.Lock()
	defer c.Unlock()

	c.seq++
	t := &manualTimer{
		clock:    c,
		deadline: c.now.Add(d),
		seq:      c.seq,
		f:        f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer which becomes due,
// including timers scheduled by the callbacks themselves.
func (c *ManualClock) Advance(d time.Duration) {
	c.Lock()
	target := c.now.Add(d)
	c.Unlock()

	for {
		c.Lock()
		next := c.nextDue(target)
		if next == nil {
			c.now = target
			c.Unlock()
			return
		}
		c.remove(next)
		c.now = next.deadline
		c.Unlock()

		next.f()
	}
}

// Pending returns the number of timers which have not fired or stopped
func (c *ManualClock) Pending() int {
	c.Lock()
	defer c.Unlock()
	return len(c.timers)
}

func (c *ManualClock) nextDue(target time.Time) *manualTimer {
	if len(c.timers) == 0 {
		return nil
	}

	sort.SliceStable(c.timers, func(i, j int) bool {
		if c.timers[i].deadline.Equal(c.timers[j].deadline) {
			return c.timers[i].seq < c.timers[j].seq
		}
		return c.timers[i].deadline.Before(c.timers[j].deadline)
	})

	if c.timers[0].deadline.After(target) {
		return nil
	}
	return c.timers[0]
}

func (c *ManualClock) remove(t *manualTimer) bool {
	for i, timer := range c.timers {
		if timer == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

func (t *manualTimer) Stop() bool {
	t.clock.Lock()
	defer t.clock.Unlock()
	return t.clock.remove(t)
}

// Timeout is a cancellable delayed callback. Once Cancel returns the
// callback is guaranteed not to start.
type Timeout struct {
	mu        sync.Mutex
	timer     Timer
	cancelled bool
	fired     bool
}

// After schedules f on the clock and returns its handle
func After(clock Clock, d time.Duration, f func()) *Timeout {
	t := &Timeout{}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = clock.AfterFunc(d, func() {
		t.mu.Lock()
		if t.cancelled || t.fired {
			t.mu.Unlock()
			return
		}
		t.fired = true
		t.mu.Unlock()

		f()
	})
	return t
}

// Cancel stops the callback. It returns false if the callback has already
// started or the timeout was cancelled before. Cancel on a nil Timeout is a
// no-op.
func (t *Timeout) Cancel() bool {
	if t == nil {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelled || t.fired {
		return false
	}
	t.cancelled = true
	if t.timer != nil {
		t.timer.Stop()
	}
	return true
}

// Fired tells if the callback has started
func (t *Timeout) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
