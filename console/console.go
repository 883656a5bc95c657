package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/resqdesk/resqdesk-api/consts"
	"github.com/resqdesk/resqdesk-api/dispatch"
	"github.com/resqdesk/resqdesk-api/external/analyzer"
	"github.com/resqdesk/resqdesk-api/external/geocoder"
	"github.com/resqdesk/resqdesk-api/schema"
	"github.com/resqdesk/resqdesk-api/store"
	"github.com/resqdesk/resqdesk-api/transcript"
	"github.com/resqdesk/resqdesk-api/utils"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "console")
}

var (
	ErrNoIncident        = fmt.Errorf("no active incident")
	ErrSpeechUnsupported = fmt.Errorf("speech recognition is not supported")
	ErrClosed            = fmt.Errorf("console is closed")
)

const archiveTimeout = 5 * time.Second

// counters reported by the console
var counters = []string{
	"analysis.success",
	"analysis.failure",
	"utterance.emitted",
	"dispatch.completed",
	"dispatch.aborted",
}

// Config holds the console settings
type Config struct {
	Debounce        time.Duration
	DispatchDelay   time.Duration
	Dispatch        dispatch.Config
	AnalyzerTimeout time.Duration
	Units           []schema.Unit
	Language        string
	TimeZone        *time.Location
}

// Option customizes a console
type Option func(*Console)

// WithGeocoder resolves the location of every analyzed incident
func WithGeocoder(g geocoder.Geocoder) Option {
	return func(c *Console) {
		c.geocoder = g
	}
}

// WithArchive keeps completed dispatches
func WithArchive(a store.Archive) Option {
	return func(c *Console) {
		c.archive = a
	}
}

// WithMetrics reports console counters to scope
func WithMetrics(scope tally.Scope) Option {
	return func(c *Console) {
		c.metrics = scope
	}
}

// WithBroker publishes console events on the given broker
func WithBroker(b *store.Broker) Option {
	return func(c *Console) {
		c.broker = b
	}
}

// Console ties the operator console together:
//
//	transcript capture -> analyzer -> incident store -> dispatch sequencer
//
// Analyses run concurrently and are not deduplicated. A response is only
// installed when no response of a later utterance has been installed and
// the store has not been reset since the utterance was sent.
type Console struct {
	mu sync.Mutex

	clock  utils.Clock
	config Config

	analyzer analyzer.Analyzer
	geocoder geocoder.Geocoder
	archive  store.Archive
	metrics  tally.Scope
	broker   *store.Broker

	incidents *store.IncidentStore
	source    *transcript.RemoteSource
	capture   *transcript.Capture
	sequencer *dispatch.Sequencer
	roster    *Roster
	call      *call

	requestSeq   uint64
	installedSeq uint64
	delay        *utils.Timeout
	delayToken   uint64
	closed       bool

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// New returns a console with an empty incident and a started call
func New(clock utils.Clock, config Config, a analyzer.Analyzer, options ...Option) *Console {
	if config.DispatchDelay <= 0 {
		config.DispatchDelay = consts.DefaultDispatchDelay
	}
	if config.AnalyzerTimeout <= 0 {
		config.AnalyzerTimeout = consts.DefaultAnalyzerTimeout
	}
	if config.Language == "" {
		config.Language = consts.DefaultLanguage
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Console{
		clock:    clock,
		config:   config,
		analyzer: a,
		archive:  store.NewNopArchive(),
		metrics:  tally.NoopScope,
		source:   transcript.NewRemoteSource(),
		roster:   NewRoster(config.Units),
		call:     newCall(clock.Now()),
		ctx:      ctx,
		cancel:   cancel,
	}

	for _, opt := range options {
		opt(c)
	}
	if c.broker == nil {
		c.broker = store.NewBroker(0)
	}
	for _, name := range counters {
		c.metrics.Counter(name)
	}

	c.incidents = store.NewIncidentStore(c.broker)
	c.capture = transcript.NewCapture(clock, config.Debounce, c.onUtterance)
	c.sequencer = dispatch.NewSequencer(clock, config.Dispatch, c.onDispatched, c.onDispatchState)
	return c
}

// Subscribe returns the console event stream
func (c *Console) Subscribe() (<-chan store.Event, func()) {
	return c.broker.Subscribe()
}

// Incident returns the current incident
func (c *Console) Incident() store.Snapshot {
	return c.incidents.Current()
}

// Transcript returns the transcript log
func (c *Console) Transcript() []schema.TranscriptEntry {
	return c.capture.Entries()
}

// Partial returns the text which has not become an utterance yet
func (c *Console) Partial() string {
	return c.capture.Partial()
}

// Dispatch returns the state of the dispatch sequence
func (c *Console) Dispatch() schema.DispatchStatus {
	return c.sequencer.Status()
}

// Units returns the unit roster
func (c *Console) Units() []UnitView {
	return c.roster.Units()
}

// Call returns the call panel state
func (c *Console) Call() CallStatus {
	return c.call.status(c.clock.Now())
}

// Clock returns the header clock with the time elapsed since the current
// incident was received
func (c *Console) Clock() ClockFace {
	return newClockFace(c.clock.Now(), c.config.TimeZone, c.incidents.Current().Incident.ReceivedAt)
}

// Listening tells if the browser speech engine is running
func (c *Console) Listening() bool {
	return c.source.Listening()
}

// Metrics returns the console counters. It is empty when the metrics scope
// cannot be read back.
func (c *Console) Metrics() map[string]int64 {
	values := map[string]int64{}
	scope, ok := c.metrics.(tally.TestScope)
	if !ok || c.metrics == tally.NoopScope {
		return values
	}
	for _, counter := range scope.Snapshot().Counters() {
		values[counter.Name()] = counter.Value()
	}
	return values
}

// Archive returns the latest completed dispatches
func (c *Console) Archive(ctx context.Context, count int64) ([]schema.DispatchRecord, error) {
	return c.archive.List(ctx, count)
}

// Ping checks the dispatch archive
func (c *Console) Ping(ctx context.Context) error {
	return c.archive.Ping(ctx)
}

// StartSpeech registers the browser speech engine. An unsupported engine
// leaves the console without caller audio.
func (c *Console) StartSpeech(supported bool, opts transcript.Options) error {
	if !supported {
		log.Warn("operator browser does not support speech recognition")
		return ErrSpeechUnsupported
	}
	if opts.Language == "" {
		opts.Language = consts.DefaultSpeechLocale
	}

	c.source.Start(opts)
	c.source.Reset()
	log.WithField("language", opts.Language).Info("speech recognition started")
	return nil
}

// StopSpeech stops listening to the caller. Text heard before the stop
// still becomes an utterance once the silence interval passes.
func (c *Console) StopSpeech() {
	c.source.Stop()
	c.publish(store.EventTranscript, fields{"partial": c.capture.Partial(), "listening": false})
}

// PushTranscript receives the running transcript of the speech engine
func (c *Console) PushTranscript(text string, listening bool) {
	c.source.Push(text, listening)
	if c.capture.Muted() {
		// caller audio heard during push-to-talk is never analyzed
		c.source.Consume()
	}

	partial := c.source.Transcript()
	c.capture.Update(partial)
	c.publish(store.EventTranscript, fields{"partial": c.capture.Partial(), "listening": listening})
}

// SetPushToTalk switches the operator microphone. While the operator talks
// the caller audio is dropped.
func (c *Console) SetPushToTalk(active bool) {
	c.call.setPushToTalk(active)
	c.capture.SetMuted(active)
	if active {
		// text heard so far belongs to the dropped buffer
		c.source.Consume()
	}
	c.publish(store.EventCall, c.Call())
}

// EndCall ends the current call and stops listening
func (c *Console) EndCall() CallStatus {
	if c.call.end(c.clock.Now()) {
		c.StopSpeech()
		c.capture.Append(schema.SpeakerSystem, "Call ended")
	}
	status := c.Call()
	c.publish(store.EventCall, status)
	return status
}

// CancelDispatch aborts the auto-dispatch, either the pause before the
// countdown or the running sequence, and clears the incident. Nothing
// changes and false is returned when there was nothing to abort.
func (c *Console) CancelDispatch() bool {
	c.mu.Lock()
	pending := c.cancelDelay()
	aborted := c.sequencer.Cancel()
	if pending || aborted {
		c.incidents.Reset()
	}
	c.mu.Unlock()

	if !pending && !aborted {
		return false
	}
	c.metrics.Counter("dispatch.aborted").Inc(1)
	return true
}

// ResetIncident clears the current incident
func (c *Console) ResetIncident() store.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelDelay()
	c.sequencer.Cancel()
	return c.incidents.Reset()
}

// HardReset clears the incident, the transcript, the unit roster and
// restarts the call
func (c *Console) HardReset() {
	c.ResetIncident()
	c.capture.Clear()
	c.source.Reset()
	c.roster.Reset()
	c.call.restart(c.clock.Now())

	c.publish(store.EventTranscript, fields{"entries": []schema.TranscriptEntry{}})
	c.publish(store.EventUnits, c.roster.Units())
	c.publish(store.EventCall, c.Call())
}

// DispatchUnit sends a unit to the current incident from the map panel.
// The auto-dispatch of the incident is called off so that it gets a single
// unit.
func (c *Console) DispatchUnit(unitID string) (schema.Unit, string, error) {
	if c.incidents.Current().Incident.IsEmpty() {
		return schema.Unit{}, "", ErrNoIncident
	}

	unit, err := c.roster.Dispatch(unitID)
	if err != nil {
		return unit, "", err
	}

	c.mu.Lock()
	c.cancelDelay()
	c.sequencer.Cancel()
	c.mu.Unlock()

	message := utils.Localize(c.config.Language, "dispatch.confirmed.body", map[string]interface{}{
		"Type": unit.Type,
		"ID":   unit.ID,
	})
	c.capture.Append(schema.SpeakerOperator, message)
	c.publish(store.EventUnits, c.roster.Units())
	log.WithField("unit", unit.ID).Info("unit dispatched manually")
	return unit, message, nil
}

// RunTicker publishes a clock event every interval until ctx is done
func (c *Console) RunTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("clock ticker exiting")
			return
		case <-ticker.C:
			c.publish(store.EventClock, fields{"clock": c.Clock(), "call": c.Call()})
		}
	}
}

// Wait blocks until every running analysis has finished
func (c *Console) Wait() {
	c.inflight.Wait()
}

// Close stops every timer and waits for running analyses. Nothing changes
// after Close returns.
func (c *Console) Close() {
	c.mu.Lock()
	c.closed = true
	c.cancelDelay()
	c.sequencer.Close()
	c.mu.Unlock()

	c.capture.Close()
	c.cancel()
	c.inflight.Wait()
}

func (c *Console) onUtterance(entry schema.TranscriptEntry) {
	if c.source.ConsumeUtterance(entry.Text) {
		// words pushed while the utterance was cut start a new one
		c.capture.Update(c.source.Transcript())
	}
	c.metrics.Counter("utterance.emitted").Inc(1)
	c.publish(store.EventUtterance, entry)

	if err := c.analyze(entry.Text); err != nil {
		log.WithError(err).Warn("utterance dropped")
	}
}

func (c *Console) analyze(utterance string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.requestSeq++
	seq := c.requestSeq
	generation := c.incidents.Generation()
	c.inflight.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.inflight.Done()

		ctx, cancel := context.WithTimeout(c.ctx, c.config.AnalyzerTimeout)
		defer cancel()

		record, err := c.analyzer.Analyze(ctx, utterance)
		if err != nil {
			c.metrics.Counter("analysis.failure").Inc(1)
			log.WithError(err).WithField("utterance", utterance).Error("analysis failed")
			sentry.CaptureException(err)
			return
		}
		c.metrics.Counter("analysis.success").Inc(1)

		if c.geocoder != nil && !record.IsEmpty() {
			coordinates, err := c.geocoder.Geocode(ctx, record.Location)
			if err != nil {
				log.WithError(err).WithField("location", record.Location).Warn("geocoding failed")
			} else {
				record.Coordinates = coordinates
			}
		}

		c.install(seq, generation, *record)
	}()
	return nil
}

func (c *Console) install(seq, generation uint64, record schema.IncidentRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if seq < c.installedSeq {
		log.WithField("seq", seq).Info("drop analysis overtaken by a later utterance")
		return
	}
	if generation != c.incidents.Generation() {
		log.WithField("seq", seq).Info("drop analysis of a reset incident")
		return
	}

	c.installedSeq = seq
	if record.IsEmpty() {
		log.WithField("seq", seq).Info("drop analysis without location")
		return
	}

	now := c.clock.Now()
	record.ID = uuid.New().String()
	record.ReceivedAt = &now
	c.incidents.Set(record)
	log.WithField("location", record.Location).Info("incident updated")
	c.armDelay()
}

// armDelay (re)starts the pause before the auto-dispatch countdown. Callers
// hold the lock.
func (c *Console) armDelay() {
	c.cancelDelay()
	token := c.delayToken
	c.delay = utils.After(c.clock, c.config.DispatchDelay, func() {
		c.autoDispatch(token)
	})
}

// cancelDelay drops the pending auto-dispatch and tells if one was
// pending. Callers hold the lock.
func (c *Console) cancelDelay() bool {
	c.delayToken++
	cancelled := c.delay.Cancel()
	c.delay = nil
	return cancelled
}

func (c *Console) autoDispatch(token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || token != c.delayToken {
		return
	}
	c.delay = nil

	incident := c.incidents.Current().Incident
	if incident.IsEmpty() || c.sequencer.Status().State.Active() {
		return
	}

	unitID := consts.AutoAssignUnit
	if unit, ok := c.roster.Assign(incident.SuggestedUnit); ok {
		unitID = unit.ID
	}
	c.sequencer.Start(incident, unitID)
}

func (c *Console) onDispatched(status schema.DispatchStatus) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, err := c.roster.Dispatch(status.Unit); err != nil && status.Unit != consts.AutoAssignUnit {
		log.WithError(err).WithField("unit", status.Unit).Warn("dispatched unit was not available")
	}
	startedAt := c.sequencer.StartedAt()
	c.incidents.Reset()
	c.mu.Unlock()

	c.metrics.Counter("dispatch.completed").Inc(1)

	location := consts.AwaitingData
	record := schema.DispatchRecord{
		ID:          uuid.New().String(),
		UnitID:      status.Unit,
		StartedAt:   startedAt,
		CompletedAt: c.clock.Now(),
	}
	if status.Incident != nil {
		record.Incident = *status.Incident
		location = status.Incident.Location
	}

	c.capture.Append(schema.SpeakerSystem, utils.Localize(c.config.Language, "dispatch.routed", map[string]interface{}{
		"Unit":     status.Unit,
		"Location": location,
	}))
	c.publish(store.EventUnits, c.roster.Units())

	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()
	if err := c.archive.Save(ctx, record); err != nil {
		log.WithError(err).Error("archive dispatch")
		sentry.CaptureException(err)
	}
}

func (c *Console) onDispatchState(status schema.DispatchStatus) {
	c.publish(store.EventDispatch, status)
}

func (c *Console) publish(kind string, data interface{}) {
	c.broker.Publish(store.Event{Kind: kind, Data: data, At: c.clock.Now()})
}

// fields is a json object payload
type fields map[string]interface{}
