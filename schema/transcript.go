package schema

import "time"

const (
	SpeakerCaller   = "caller"
	SpeakerSystem   = "system"
	SpeakerOperator = "operator"
)

const (
	HighlightNone     = ""
	HighlightCritical = "critical"
	HighlightWarning  = "warning"
)

// Token is a word of a transcript line with its highlight level
type Token struct {
	Word      string `json:"word"`
	Highlight string `json:"highlight,omitempty"`
}

// TranscriptEntry is one completed line of the transcript log
type TranscriptEntry struct {
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	SpeakerType string    `json:"speaker_type"`
	Tokens      []Token   `json:"tokens,omitempty"`
}
