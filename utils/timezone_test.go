package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetLocation(t *testing.T) {
	tz8 := GetLocation("GMT+8")
	assert.NotNil(t, tz8)
	assert.Equal(t, "GMT+8", tz8.String())

	tz530 := GetLocation("utc+5:30")
	assert.NotNil(t, tz530)
	assert.Equal(t, "UTC+5:30", tz530.String())
	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, tz530).Zone()
	assert.Equal(t, 5*3600+30*60, offset)

	tz_945 := GetLocation("GMT-9:45")
	assert.NotNil(t, tz_945)
	_, offset = time.Date(2024, 1, 1, 0, 0, 0, 0, tz_945).Zone()
	assert.Equal(t, -(9*3600 + 45*60), offset)

	assert.NotNil(t, GetLocation("UTC"))
	assert.Nil(t, GetLocation(""))
	assert.Nil(t, GetLocation("Asia/Kolkata"))
	assert.Nil(t, GetLocation("GMT*8"))
	assert.Nil(t, GetLocation("GMT+8:75"))

	for _, tz := range []string{"UTC+-5", "UTC-+5", "UTC+5:-30", "UTC+5:+30", "GMT+ 5", "UTC+", "UTC+5:", "UTC+005"} {
		assert.Nil(t, GetLocation(tz), tz)
	}
}

func TestFormatUTCOffset(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)
	assert.Equal(t, "UTC+05:30", FormatUTCOffset(time.Date(2024, 1, 1, 0, 0, 0, 0, ist)))

	assert.Equal(t, "UTC+00:00", FormatUTCOffset(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	nst := time.FixedZone("NST", -(3*3600 + 30*60))
	assert.Equal(t, "UTC-03:30", FormatUTCOffset(time.Date(2024, 1, 1, 0, 0, 0, 0, nst)))
}
