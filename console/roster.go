package console

import (
	"fmt"
	"strings"
	"sync"

	"github.com/resqdesk/resqdesk-api/schema"
)

var (
	ErrUnitNotFound   = fmt.Errorf("unit not found")
	ErrUnitBusy       = fmt.Errorf("unit is busy")
	ErrUnitDispatched = fmt.Errorf("unit has been dispatched")
)

// DefaultUnits is the roster used when none is configured
func DefaultUnits() []schema.Unit {
	return []schema.Unit{
		{ID: "A12", Type: "Ambulance", TypeShort: "AMBULANCE", Status: schema.UnitAvailable, ETA: 6, Angle: 45, Distance: 0.35},
		{ID: "F07", Type: "Fire Truck", TypeShort: "FIRE", Status: schema.UnitBusy, ETA: 12, Angle: 120, Distance: 0.55},
		{ID: "P04", Type: "Police", TypeShort: "POLICE", Status: schema.UnitAvailable, ETA: 4, Angle: 200, Distance: 0.7},
		{ID: "R03", Type: "Rescue", TypeShort: "RESCUE", Status: schema.UnitAvailable, ETA: 9, Angle: 280, Distance: 0.45},
	}
}

// UnitView is a unit with its radar position
type UnitView struct {
	schema.Unit
	Position schema.RadarPosition `json:"position"`
}

// Roster tracks the status of the response units
type Roster struct {
	mu      sync.Mutex
	initial []schema.Unit
	units   []schema.Unit
}

// NewRoster returns a roster of the given units, or of the default units
// when the list is empty
func NewRoster(units []schema.Unit) *Roster {
	if len(units) == 0 {
		units = DefaultUnits()
	}

	initial := make([]schema.Unit, len(units))
	for i, u := range units {
		if u.Status == "" {
			u.Status = schema.UnitAvailable
		}
		initial[i] = u
	}

	return &Roster{
		initial: initial,
		units:   append([]schema.Unit{}, initial...),
	}
}

// Units returns every unit in roster order
func (r *Roster) Units() []UnitView {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]UnitView, len(r.units))
	for i, u := range r.units {
		views[i] = UnitView{Unit: u, Position: u.Position()}
	}
	return views
}

// Assign picks the unit for an incident: the suggested unit when it is
// available, otherwise the available unit with the shortest ETA
func (r *Roster) Assign(suggested string) (schema.Unit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.find(suggested); i >= 0 && r.units[i].Dispatchable() {
		return r.units[i], true
	}

	best := -1
	for i, u := range r.units {
		if !u.Dispatchable() {
			continue
		}
		if best < 0 || u.ETA < r.units[best].ETA {
			best = i
		}
	}

	if best < 0 {
		return schema.Unit{}, false
	}
	return r.units[best], true
}

// Dispatch sends an available unit out
func (r *Roster) Dispatch(id string) (schema.Unit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.find(id)
	if i < 0 {
		return schema.Unit{}, ErrUnitNotFound
	}

	switch r.units[i].Status {
	case schema.UnitBusy:
		return r.units[i], ErrUnitBusy
	case schema.UnitDispatched:
		return r.units[i], ErrUnitDispatched
	}

	r.units[i].Status = schema.UnitDispatched
	return r.units[i], nil
}

// Unit returns a unit by id
func (r *Roster) Unit(id string) (schema.Unit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if i := r.find(id); i >= 0 {
		return r.units[i], true
	}
	return schema.Unit{}, false
}

// Reset restores the initial status of every unit
func (r *Roster) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units = append([]schema.Unit{}, r.initial...)
}

func (r *Roster) find(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i, u := range r.units {
		if strings.EqualFold(u.ID, id) {
			return i
		}
	}
	return -1
}
