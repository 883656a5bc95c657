package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalize(t *testing.T) {
	assert.Equal(t,
		"Browser doesn't support speech recognition. Use Chrome.",
		Localize("en", "speech.unsupported", nil))

	assert.Equal(t,
		"Ambulance A12 en route to incident.",
		Localize("en", "dispatch.confirmed.body", map[string]interface{}{
			"Type": "Ambulance",
			"ID":   "A12",
		}))

	assert.Equal(t, "UNIT BUSY", Localize("fr", "unit.busy", nil), "fallback to english")
	assert.Equal(t, "no.such.message", Localize("en", "no.such.message", nil))
}
