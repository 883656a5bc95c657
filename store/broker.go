package store

import (
	"sync"
	"time"
)

const (
	EventIncident   = "incident"
	EventTranscript = "transcript"
	EventUtterance  = "utterance"
	EventDispatch   = "dispatch"
	EventUnits      = "units"
	EventCall       = "call"
	EventClock      = "clock"

	defaultSubscriberBuffer = 32
)

// Event is a change notification sent to the console panels
type Event struct {
	Kind string      `json:"kind"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

// Broker fans events out to subscribers. A subscriber which does not keep
// up loses events instead of blocking the publisher.
type Broker struct {
	mu     sync.Mutex
	buffer int
	subs   map[chan Event]struct{}
}

// NewBroker returns a broker giving every subscriber a buffer of the
// given size
func NewBroker(buffer int) *Broker {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Broker{
		buffer: buffer,
		subs:   map[chan Event]struct{}{},
	}
}

// Subscribe returns an event channel and the function releasing it
func (b *Broker) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish sends an event to every subscriber
func (b *Broker) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of active subscribers
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
