package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// GetLocation returns a fixed zone for a `GMT+h[:mm]` or `UTC+h[:mm]`
// timezone. An empty or unparsable timezone returns nil.
func GetLocation(timezone string) *time.Location {
	tz := strings.ToUpper(strings.TrimSpace(timezone))

	var prefix string
	switch {
	case strings.HasPrefix(tz, "GMT"):
		prefix = "GMT"
	case strings.HasPrefix(tz, "UTC"):
		prefix = "UTC"
	default:
		return nil
	}

	offset := strings.TrimPrefix(tz, prefix)
	if offset == "" {
		return time.FixedZone(tz, 0)
	}

	sign := 1
	switch offset[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil
	}

	parts := strings.SplitN(offset[1:], ":", 2)
	hours, ok := offsetPart(parts[0])
	if !ok || hours > 14 {
		return nil
	}

	minutes := 0
	if len(parts) == 2 {
		minutes, ok = offsetPart(parts[1])
		if !ok || minutes >= 60 {
			return nil
		}
	}

	seconds := sign * (hours*3600 + minutes*60)
	return time.FixedZone(tz, seconds)
}

// offsetPart reads the hour or minute part of an offset. Only digits are
// accepted, the sign belongs to the whole offset.
func offsetPart(part string) (int, bool) {
	if part == "" || len(part) > 2 {
		return 0, false
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(part)
	return n, err == nil
}

// FormatUTCOffset formats the zone offset of t as `UTC+hh:mm`
func FormatUTCOffset(t time.Time) string {
	_, offset := t.Zone()

	sign := '+'
	if offset < 0 {
		sign = '-'
		offset = -offset
	}

	return fmt.Sprintf("UTC%c%02d:%02d", sign, offset/3600, (offset%3600)/60)
}
