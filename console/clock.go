package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/resqdesk/resqdesk-api/utils"
)

// ClockFace is the header clock of the console
type ClockFace struct {
	Time    string    `json:"time"`
	Date    string    `json:"date"`
	Elapsed string    `json:"elapsed,omitempty"`
	Now     time.Time `json:"now"`
}

// FormatClock formats the time of day on a 24 hour clock
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}

// FormatDate formats a date as `02 JAN 2006 // UTC+hh:mm`
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s // %s", strings.ToUpper(t.Format("02 Jan 2006")), utils.FormatUTCOffset(t))
}

func newClockFace(now time.Time, loc *time.Location, since *time.Time) ClockFace {
	if loc != nil {
		now = now.In(loc)
	}

	face := ClockFace{
		Time: FormatClock(now),
		Date: FormatDate(now),
		Now:  now,
	}
	if since != nil {
		face.Elapsed = FormatDuration(int64(now.Sub(*since) / time.Second))
	}
	return face
}
