package transcript

import (
	"strings"
	"sync"
	"unicode"
)

// Options are the settings a speech engine is started with
type Options struct {
	Continuous bool   `json:"continuous"`
	Language   string `json:"language"`
}

// Source is a live speech-to-text engine
type Source interface {
	Start(Options)
	Stop()
	Transcript() string
	Listening() bool
}

// RemoteSource mirrors a speech engine running in the operator's browser.
// The browser pushes its running transcript; text already consumed as an
// utterance is cut from the front of later pushes.
type RemoteSource struct {
	sync.Mutex
	options   Options
	raw       string
	consumed  string
	listening bool
}

// NewRemoteSource returns an idle remote source
func NewRemoteSource() *RemoteSource {
	return &RemoteSource{}
}

func (s *RemoteSource) Start(opts Options) {
	s.Lock()
	defer s.Unlock()
	s.options = opts
	s.listening = true
}

func (s *RemoteSource) Stop() {
	s.Lock()
	defer s.Unlock()
	s.listening = false
}

func (s *RemoteSource) Listening() bool {
	s.Lock()
	defer s.Unlock()
	return s.listening
}

// Options returns the options the source was last started with
func (s *RemoteSource) Options() Options {
	s.Lock()
	defer s.Unlock()
	return s.options
}

// Push records the running transcript of the browser engine
func (s *RemoteSource) Push(text string, listening bool) {
	s.Lock()
	defer s.Unlock()

	// the engine restarted its transcript
	if s.consumed != "" && !strings.HasPrefix(text, s.consumed) {
		s.consumed = ""
	}
	s.raw = text
	s.listening = listening
}

// Transcript returns the part of the running transcript which has not been
// consumed yet
func (s *RemoteSource) Transcript() string {
	s.Lock()
	defer s.Unlock()
	return strings.TrimSpace(strings.TrimPrefix(s.raw, s.consumed))
}

// Consume marks the current running transcript as used
func (s *RemoteSource) Consume() {
	s.Lock()
	defer s.Unlock()
	s.consumed = s.raw
}

// ConsumeUtterance marks the unconsumed transcript up to the end of
// utterance as used. Text pushed after the utterance was cut stays
// unconsumed. It returns false and changes nothing when the transcript no
// longer starts with utterance.
func (s *RemoteSource) ConsumeUtterance(utterance string) bool {
	s.Lock()
	defer s.Unlock()

	if utterance == "" || !strings.HasPrefix(s.raw, s.consumed) {
		return false
	}
	rest := strings.TrimLeftFunc(s.raw[len(s.consumed):], unicode.IsSpace)
	if !strings.HasPrefix(rest, utterance) {
		return false
	}
	s.consumed = s.raw[:len(s.raw)-len(rest)+len(utterance)]
	return true
}

// Reset forgets the running transcript
func (s *RemoteSource) Reset() {
	s.Lock()
	defer s.Unlock()
	s.raw = ""
	s.consumed = ""
}
