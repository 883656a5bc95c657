package consts

import "time"

// AwaitingData is the location value of an incident record that has not
// been filled by the analysis service yet.
const AwaitingData = "Awaiting data..."

// Default timings of the operator console.
const (
	DefaultDebounce          = 1200 * time.Millisecond
	DefaultDispatchDelay     = 4 * time.Second
	DefaultDispatchCountdown = 3
	DefaultCountdownTick     = time.Second
	DefaultDispatchConfirm   = 2 * time.Second
	DefaultAnalyzerTimeout   = 30 * time.Second

	// MinUtteranceLength is the minimum length (in runes) of an utterance
	// which is worth sending to the analysis service.
	MinUtteranceLength = 2
)

const (
	DefaultAnalyzerURL  = "http://localhost:8000"
	DefaultArchiveMax   = 200
	DefaultLanguage     = "en"
	DefaultSpeechLocale = "en-IN"
	AutoAssignUnit      = "AUTO-ASSIGN"
	ArchiveKey          = "resqdesk:dispatches"
)

// CriticalKeywords are highlighted as critical in the transcript feed.
var CriticalKeywords = []string{"bleeding", "trapped", "unconscious", "dying", "emergency"}

// WarningKeywords are highlighted as warnings in the transcript feed.
var WarningKeywords = []string{"baby", "pregnant", "elderly", "child", "disabled"}
