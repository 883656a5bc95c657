package transcript

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/resqdesk/resqdesk-api/consts"
	"github.com/resqdesk/resqdesk-api/schema"
	"github.com/resqdesk/resqdesk-api/utils"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "transcript")
}

// UtteranceHandler receives every completed utterance
type UtteranceHandler func(entry schema.TranscriptEntry)

// Capture turns a running partial transcript into utterances. An utterance
// is emitted once no new text arrived for the debounce interval.
type Capture struct {
	mu sync.Mutex

	clock    utils.Clock
	debounce time.Duration
	handler  UtteranceHandler

	buffer  string
	muted   bool
	closed  bool
	pending *utils.Timeout
	token   uint64

	entries []schema.TranscriptEntry
}

// NewCapture returns a capture which calls handler for every utterance.
// A non-positive debounce uses the default interval.
func NewCapture(clock utils.Clock, debounce time.Duration, handler UtteranceHandler) *Capture {
	if debounce <= 0 {
		debounce = consts.DefaultDebounce
	}
	return &Capture{
		clock:    clock,
		debounce: debounce,
		handler:  handler,
		entries:  []schema.TranscriptEntry{},
	}
}

// Update receives the latest partial transcript and restarts the silence
// timer when the text changed. Text received while muted is dropped.
func (c *Capture) Update(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if text == c.buffer && c.pending != nil {
		return
	}

	c.pending.Cancel()
	c.pending = nil

	if c.muted {
		c.buffer = ""
		return
	}

	c.buffer = text
	if strings.TrimSpace(text) == "" {
		return
	}

	c.token++
	token := c.token
	c.pending = utils.After(c.clock, c.debounce, func() {
		c.flush(token)
	})
}

// SetMuted switches the half-duplex override. Muting drops the buffered
// text and the silence timer.
func (c *Capture) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.muted = muted
	if muted {
		c.pending.Cancel()
		c.pending = nil
		c.buffer = ""
	}
}

// Muted tells if the half-duplex override is on
func (c *Capture) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// Partial returns the buffered text which is not an utterance yet
func (c *Capture) Partial() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer
}

// Append adds a non-caller line to the log
func (c *Capture) Append(speaker, text string) schema.TranscriptEntry {
	entry := schema.TranscriptEntry{
		Text:        text,
		Timestamp:   c.clock.Now(),
		SpeakerType: speaker,
		Tokens:      Highlight(text),
	}

	c.mu.Lock()
	c.entries = append(c.entries, entry)
	c.mu.Unlock()
	return entry
}

// Entries returns a copy of the transcript log
func (c *Capture) Entries() []schema.TranscriptEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]schema.TranscriptEntry{}, c.entries...)
}

// Clear empties the log and the buffer
func (c *Capture) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pending.Cancel()
	c.pending = nil
	c.buffer = ""
	c.entries = []schema.TranscriptEntry{}
}

// Close cancels the silence timer. Nothing is emitted after Close.
func (c *Capture) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.pending.Cancel()
	c.pending = nil
	c.buffer = ""
}

func (c *Capture) flush(token uint64) {
	c.mu.Lock()
	if c.closed || c.pending == nil || c.token != token {
		c.mu.Unlock()
		return
	}

	text := strings.TrimSpace(c.buffer)
	c.buffer = ""
	c.pending = nil

	if utf8.RuneCountInString(text) < consts.MinUtteranceLength {
		c.mu.Unlock()
		log.WithField("text", text).Debug("ignore short utterance")
		return
	}

	entry := schema.TranscriptEntry{
		Text:        text,
		Timestamp:   c.clock.Now(),
		SpeakerType: schema.SpeakerCaller,
		Tokens:      Highlight(text),
	}
	c.entries = append(c.entries, entry)
	handler := c.handler
	c.mu.Unlock()

	if handler != nil {
		handler(entry)
	}
}
