package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/resqdesk/resqdesk-api/schema"
)

func TestRosterAssign(t *testing.T) {
	r := NewRoster(nil)

	u, ok := r.Assign("r03")
	assert.True(t, ok)
	assert.Equal(t, "R03", u.ID, "suggested unit matches case-insensitively")

	u, ok = r.Assign("F07")
	assert.True(t, ok)
	assert.Equal(t, "P04", u.ID, "a busy suggestion falls back to the shortest ETA")

	u, ok = r.Assign("")
	assert.True(t, ok)
	assert.Equal(t, "P04", u.ID)

	for _, id := range []string{"A12", "P04", "R03"} {
		_, err := r.Dispatch(id)
		assert.NoError(t, err)
	}
	_, ok = r.Assign("")
	assert.False(t, ok, "no unit left")
}

func TestRosterDispatchAndReset(t *testing.T) {
	r := NewRoster([]schema.Unit{
		{ID: "X1", Type: "Ambulance", ETA: 3},
		{ID: "X2", Type: "Police", Status: schema.UnitBusy, ETA: 1},
	})

	units := r.Units()
	assert.Len(t, units, 2)
	assert.Equal(t, schema.UnitAvailable, units[0].Status, "empty status means available")

	_, err := r.Dispatch("X2")
	assert.Equal(t, ErrUnitBusy, err)
	_, err = r.Dispatch("nope")
	assert.Equal(t, ErrUnitNotFound, err)

	u, err := r.Dispatch("X1")
	assert.NoError(t, err)
	assert.Equal(t, schema.UnitDispatched, u.Status)
	_, err = r.Dispatch("X1")
	assert.Equal(t, ErrUnitDispatched, err)

	r.Reset()
	u, _ = r.Unit("X1")
	assert.Equal(t, schema.UnitAvailable, u.Status)
}

func TestCallStatus(t *testing.T) {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	c := newCall(start)

	st := c.status(start.Add(125 * time.Second))
	assert.True(t, st.Active)
	assert.Equal(t, int64(125), st.Seconds)
	assert.Equal(t, "02:05", st.Display)

	c.setPushToTalk(true)
	assert.True(t, c.status(start).PushToTalk)

	assert.True(t, c.end(start.Add(10*time.Second)))
	assert.False(t, c.end(start.Add(20*time.Second)), "a call ends once")
	st = c.status(start.Add(time.Hour))
	assert.False(t, st.Active)
	assert.False(t, st.PushToTalk)
	assert.Equal(t, "00:10", st.Display)

	c.restart(start.Add(time.Hour))
	assert.Equal(t, "00:00", c.status(start.Add(time.Hour)).Display)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", FormatDuration(-3))
	assert.Equal(t, "00:59", FormatDuration(59))
	assert.Equal(t, "61:01", FormatDuration(3661))
}

func TestClockFace(t *testing.T) {
	now := time.Date(2024, 3, 1, 4, 30, 5, 0, time.UTC)
	loc := time.FixedZone("IST", 5*3600+30*60)
	since := now.Add(-90 * time.Second)

	face := newClockFace(now, loc, &since)
	assert.Equal(t, "10:00:05", face.Time)
	assert.Equal(t, "01 MAR 2024 // UTC+05:30", face.Date)
	assert.Equal(t, "01:30", face.Elapsed)

	face = newClockFace(now, nil, nil)
	assert.Equal(t, "04:30:05", face.Time)
	assert.Empty(t, face.Elapsed)
}
