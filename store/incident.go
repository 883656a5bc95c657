package store

import (
	"sync"

	"github.com/resqdesk/resqdesk-api/schema"
)

// Snapshot is the current incident and the generation it belongs to
type Snapshot struct {
	Incident   schema.IncidentRecord `json:"incident"`
	Generation uint64                `json:"generation"`
}

// IncidentStore holds the current incident. Set replaces the record as a
// whole; Reset restores the placeholder record and starts a new generation
// so views drop their transient state.
type IncidentStore struct {
	mu         sync.RWMutex
	current    schema.IncidentRecord
	generation uint64
	broker     *Broker
}

// NewIncidentStore returns a store holding the placeholder record. Changes
// are published on broker; a nil broker gets a private one.
func NewIncidentStore(broker *Broker) *IncidentStore {
	if broker == nil {
		broker = NewBroker(0)
	}
	return &IncidentStore{
		current: schema.EmptyIncident(),
		broker:  broker,
	}
}

// Set replaces the current incident
func (s *IncidentStore) Set(record schema.IncidentRecord) Snapshot {
	s.mu.Lock()
	s.current = record.Clone()
	snap := s.snapshot()
	s.mu.Unlock()

	s.publish(snap)
	return snap
}

// Reset restores the placeholder incident and increments the generation
func (s *IncidentStore) Reset() Snapshot {
	s.mu.Lock()
	s.current = schema.EmptyIncident()
	s.generation++
	snap := s.snapshot()
	s.mu.Unlock()

	s.publish(snap)
	return snap
}

// Current returns the latest incident with its generation
func (s *IncidentStore) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// Generation returns the current generation
func (s *IncidentStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Subscribe returns a channel of store changes
func (s *IncidentStore) Subscribe() (<-chan Event, func()) {
	return s.broker.Subscribe()
}

func (s *IncidentStore) snapshot() Snapshot {
	return Snapshot{
		Incident:   s.current.Clone(),
		Generation: s.generation,
	}
}

func (s *IncidentStore) publish(snap Snapshot) {
	s.broker.Publish(Event{Kind: EventIncident, Data: snap})
}
