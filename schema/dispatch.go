package schema

import "time"

// DispatchState is the state of the auto-dispatch sequence
type DispatchState string

const (
	DispatchIdle         DispatchState = "idle"
	DispatchCountingDown DispatchState = "counting_down"
	DispatchConfirming   DispatchState = "confirming"
	DispatchDispatched   DispatchState = "dispatched"
	DispatchAborted      DispatchState = "aborted"
)

// Active tells if the sequence is running
func (s DispatchState) Active() bool {
	return s == DispatchCountingDown || s == DispatchConfirming
}

// DispatchStatus is a snapshot of the dispatch sequence
type DispatchStatus struct {
	State     DispatchState   `json:"state"`
	Remaining int             `json:"remaining"`
	Incident  *IncidentRecord `json:"incident,omitempty"`
	Unit      string          `json:"unit,omitempty"`
}

// DispatchRecord is an archived, completed dispatch
type DispatchRecord struct {
	ID          string         `json:"id"`
	Incident    IncidentRecord `json:"incident"`
	UnitID      string         `json:"unit_id"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
}
