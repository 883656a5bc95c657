package dispatch

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/resqdesk/resqdesk-api/consts"
	"github.com/resqdesk/resqdesk-api/schema"
	"github.com/resqdesk/resqdesk-api/utils"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "dispatch")
}

// Config holds the timings of the auto-dispatch sequence
type Config struct {
	Countdown int
	Tick      time.Duration
	Confirm   time.Duration
}

// DefaultConfig is a three second countdown followed by two seconds of
// confirmation
func DefaultConfig() Config {
	return Config{
		Countdown: consts.DefaultDispatchCountdown,
		Tick:      consts.DefaultCountdownTick,
		Confirm:   consts.DefaultDispatchConfirm,
	}
}

// CompleteFunc is called once a sequence reaches the dispatched state
type CompleteFunc func(status schema.DispatchStatus)

// StateFunc observes every state change
type StateFunc func(status schema.DispatchStatus)

// Sequencer runs the auto-dispatch countdown:
//
//	idle -> counting_down(n) -> ... -> counting_down(0) -> confirming -> dispatched
//	any active state -> aborted (Cancel)
//
// Every timer callback carries the token of the run it belongs to. Cancel
// and Start change the token under the lock, so a callback of a stale run
// never acts.
type Sequencer struct {
	mu sync.Mutex

	clock  utils.Clock
	config Config

	onComplete CompleteFunc
	onState    StateFunc

	state     schema.DispatchState
	remaining int
	incident  *schema.IncidentRecord
	unit      string
	startedAt time.Time
	token     uint64
	timer     utils.Timer
}

// NewSequencer returns an idle sequencer. Zero values of config fall back
// to the defaults.
func NewSequencer(clock utils.Clock, config Config, onComplete CompleteFunc, onState StateFunc) *Sequencer {
	d := DefaultConfig()
	if config.Countdown <= 0 {
		config.Countdown = d.Countdown
	}
	if config.Tick <= 0 {
		config.Tick = d.Tick
	}
	if config.Confirm <= 0 {
		config.Confirm = d.Confirm
	}

	return &Sequencer{
		clock:      clock,
		config:     config,
		onComplete: onComplete,
		onState:    onState,
		state:      schema.DispatchIdle,
	}
}

// Start begins a countdown for the incident with the given unit. It returns
// false when a sequence is already running.
func (s *Sequencer) Start(incident schema.IncidentRecord, unit string) bool {
	s.mu.Lock()
	if s.state.Active() {
		s.mu.Unlock()
		return false
	}

	r := incident.Clone()
	s.incident = &r
	s.unit = unit
	s.startedAt = s.clock.Now()
	s.token++
	s.enter(schema.DispatchCountingDown, s.config.Countdown)
	status := s.status()
	s.mu.Unlock()

	log.WithField("unit", unit).Infof("dispatch countdown started for %q", incident.Location)
	s.notify(status)
	return true
}

// Cancel aborts a running sequence. Once Cancel returns, the completion
// callback of that sequence is never called. It returns false when no
// sequence is running.
func (s *Sequencer) Cancel() bool {
	s.mu.Lock()
	if !s.state.Active() {
		s.mu.Unlock()
		return false
	}

	s.token++
	s.stopTimer()
	s.state = schema.DispatchAborted
	s.remaining = 0
	status := s.status()
	s.mu.Unlock()

	log.Info("dispatch sequence aborted")
	s.notify(status)
	return true
}

// Status returns a snapshot of the sequence
func (s *Sequencer) Status() schema.DispatchStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

// StartedAt returns the time the current or last sequence started
func (s *Sequencer) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Close stops the pending timer without notifying anyone
func (s *Sequencer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token++
	s.stopTimer()
}

// enter switches state and arms the timer of the new state. Callers hold
// the lock.
func (s *Sequencer) enter(state schema.DispatchState, remaining int) {
	s.state = state
	s.remaining = remaining

	token := s.token
	switch state {
	case schema.DispatchCountingDown:
		s.timer = s.clock.AfterFunc(s.config.Tick, func() { s.tick(token) })
	case schema.DispatchConfirming:
		s.timer = s.clock.AfterFunc(s.config.Confirm, func() { s.complete(token) })
	default:
		s.timer = nil
	}
}

func (s *Sequencer) tick(token uint64) {
	s.mu.Lock()
	if token != s.token || s.state != schema.DispatchCountingDown {
		s.mu.Unlock()
		return
	}

	if s.remaining > 1 {
		s.enter(schema.DispatchCountingDown, s.remaining-1)
	} else {
		// counting_down(0) shows the success state right away
		s.enter(schema.DispatchConfirming, 0)
	}
	status := s.status()
	s.mu.Unlock()

	s.notify(status)
}

func (s *Sequencer) complete(token uint64) {
	s.mu.Lock()
	if token != s.token || s.state != schema.DispatchConfirming {
		s.mu.Unlock()
		return
	}

	s.enter(schema.DispatchDispatched, 0)
	status := s.status()
	onComplete := s.onComplete
	s.mu.Unlock()

	log.WithField("unit", status.Unit).Info("unit dispatched")
	s.notify(status)
	if onComplete != nil {
		onComplete(status)
	}
}

func (s *Sequencer) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Sequencer) status() schema.DispatchStatus {
	st := schema.DispatchStatus{
		State:     s.state,
		Remaining: s.remaining,
		Unit:      s.unit,
	}
	if s.incident != nil {
		r := s.incident.Clone()
		st.Incident = &r
	}
	return st
}

func (s *Sequencer) notify(status schema.DispatchStatus) {
	if s.onState != nil {
		s.onState(status)
	}
}
