package transcript

import (
	"strings"

	"github.com/resqdesk/resqdesk-api/consts"
	"github.com/resqdesk/resqdesk-api/schema"
)

var punctuation = strings.NewReplacer(".", "", ",", "", "!", "", "?", "")

// Highlight splits a transcript line into words and tags the words which
// contain a critical or warning keyword. Critical keywords win.
func Highlight(text string) []schema.Token {
	words := strings.Fields(text)
	tokens := make([]schema.Token, 0, len(words))

	for _, word := range words {
		clean := punctuation.Replace(strings.ToLower(word))

		highlight := schema.HighlightNone
		if containsAny(clean, consts.CriticalKeywords) {
			highlight = schema.HighlightCritical
		} else if containsAny(clean, consts.WarningKeywords) {
			highlight = schema.HighlightWarning
		}

		tokens = append(tokens, schema.Token{Word: word, Highlight: highlight})
	}
	return tokens
}

func containsAny(word string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(word, kw) {
			return true
		}
	}
	return false
}
