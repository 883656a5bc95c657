package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resqdesk/resqdesk-api/schema"
)

func TestIncidentStoreSetReplacesWholeRecord(t *testing.T) {
	s := NewIncidentStore(nil)
	assert.Equal(t, schema.EmptyIncident(), s.Current().Incident)

	s.Set(schema.IncidentRecord{
		Location:      "Temple",
		EmergencyType: "Collapse",
		Keywords:      []string{"trapped"},
		SuggestedUnit: "R03",
	})
	s.Set(schema.IncidentRecord{
		Location: "Market",
		Keywords: []string{},
	})

	current := s.Current().Incident
	assert.Equal(t, "Market", current.Location)
	assert.Equal(t, "", current.EmergencyType, "no merge with the previous record")
	assert.Equal(t, "", current.SuggestedUnit)
	assert.Equal(t, uint64(0), s.Generation())
}

func TestIncidentStoreSetCopies(t *testing.T) {
	s := NewIncidentStore(nil)
	r := schema.IncidentRecord{Location: "Temple", Keywords: []string{"trapped"}}
	s.Set(r)

	r.Keywords[0] = "changed"
	assert.Equal(t, "trapped", s.Current().Incident.Keywords[0])

	snap := s.Current()
	snap.Incident.Keywords[0] = "changed"
	assert.Equal(t, "trapped", s.Current().Incident.Keywords[0])
}

func TestIncidentStoreReset(t *testing.T) {
	s := NewIncidentStore(nil)
	s.Set(schema.IncidentRecord{Location: "Temple", Severity: "Critical"})

	first := s.Reset()
	assert.Equal(t, schema.EmptyIncident(), first.Incident)
	assert.Equal(t, uint64(1), first.Generation)

	second := s.Reset()
	assert.Equal(t, first.Incident, second.Incident, "reset is idempotent")
	assert.Equal(t, uint64(2), second.Generation)
	assert.True(t, s.Current().Incident.IsEmpty())
}

func TestIncidentStorePublishes(t *testing.T) {
	b := NewBroker(4)
	s := NewIncidentStore(b)
	events, cancel := s.Subscribe()
	defer cancel()

	s.Set(schema.IncidentRecord{Location: "Temple"})
	s.Reset()

	e := <-events
	assert.Equal(t, EventIncident, e.Kind)
	assert.Equal(t, "Temple", e.Data.(Snapshot).Incident.Location)

	e = <-events
	assert.Equal(t, uint64(1), e.Data.(Snapshot).Generation)
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker(1)
	events, cancel := b.Subscribe()

	b.Publish(Event{Kind: "a"})
	b.Publish(Event{Kind: "b"})

	e := <-events
	assert.Equal(t, "a", e.Kind)
	assert.False(t, e.At.IsZero())
	assert.Len(t, events, 0)

	assert.Equal(t, 1, b.Subscribers())
	cancel()
	cancel()
	assert.Equal(t, 0, b.Subscribers())

	_, open := <-events
	assert.False(t, open)

	b.Publish(Event{Kind: "c"})
}
