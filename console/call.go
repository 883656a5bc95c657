package console

import (
	"fmt"
	"sync"
	"time"
)

// CallStatus is the state shown on the call panel
type CallStatus struct {
	Active     bool      `json:"active"`
	StartedAt  time.Time `json:"started_at"`
	Seconds    int64     `json:"seconds"`
	Display    string    `json:"display"`
	PushToTalk bool      `json:"push_to_talk"`
}

type call struct {
	mu         sync.Mutex
	startedAt  time.Time
	endedAt    time.Time
	pushToTalk bool
}

func newCall(now time.Time) *call {
	return &call{startedAt: now}
}

func (c *call) restart(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startedAt = now
	c.endedAt = time.Time{}
	c.pushToTalk = false
}

func (c *call) end(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.endedAt.IsZero() {
		return false
	}
	c.endedAt = now
	c.pushToTalk = false
	return true
}

func (c *call) setPushToTalk(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushToTalk = active
}

func (c *call) status(now time.Time) CallStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	until := now
	if !c.endedAt.IsZero() {
		until = c.endedAt
	}
	seconds := int64(until.Sub(c.startedAt) / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	return CallStatus{
		Active:     c.endedAt.IsZero(),
		StartedAt:  c.startedAt,
		Seconds:    seconds,
		Display:    FormatDuration(seconds),
		PushToTalk: c.pushToTalk,
	}
}

// FormatDuration formats seconds as mm:ss
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
