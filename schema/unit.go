package schema

import "math"

const (
	UnitAvailable  = "available"
	UnitBusy       = "busy"
	UnitDispatched = "dispatched"
)

// Unit is an emergency response unit shown on the map panel. Angle and
// Distance place the unit on the radar: degrees clockwise from north and a
// fraction of the radar radius.
type Unit struct {
	ID        string  `json:"id" mapstructure:"id"`
	Type      string  `json:"type" mapstructure:"type"`
	TypeShort string  `json:"type_short" mapstructure:"type_short"`
	Status    string  `json:"status" mapstructure:"status"`
	ETA       int     `json:"eta" mapstructure:"eta"`
	Angle     float64 `json:"angle" mapstructure:"angle"`
	Distance  float64 `json:"distance" mapstructure:"distance"`
}

// RadarPosition is the position of a unit in a 100x100 radar view box
type RadarPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Position converts the polar placement of a unit into radar coordinates
func (u Unit) Position() RadarPosition {
	radian := (u.Angle - 90) * (math.Pi / 180)
	return RadarPosition{
		X: 50 + u.Distance*40*math.Cos(radian),
		Y: 50 + u.Distance*40*math.Sin(radian),
	}
}

// Dispatchable tells if the unit can be sent to an incident
func (u Unit) Dispatchable() bool {
	return u.Status == UnitAvailable
}
