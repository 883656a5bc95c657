package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resqdesk/resqdesk-api/consts"
)

func TestEmptyIncident(t *testing.T) {
	r := EmptyIncident()
	assert.Equal(t, consts.AwaitingData, r.Location)
	assert.NotNil(t, r.Keywords, "keywords should be an empty list")
	assert.Empty(t, r.Keywords)
	assert.True(t, r.IsEmpty())

	assert.True(t, IncidentRecord{Location: "  "}.IsEmpty(), "blank location is empty")
	assert.False(t, IncidentRecord{Location: "Temple road"}.IsEmpty())
}

func TestUnmarshalKeywords(t *testing.T) {
	cases := []struct {
		body     string
		expected []string
	}{
		{`{"location":"a"}`, []string{}},
		{`{"location":"a","keywords":null}`, []string{}},
		{`{"location":"a","keywords":"fire"}`, []string{}},
		{`{"location":"a","keywords":{"k":"v"}}`, []string{}},
		{`{"location":"a","keywords":42}`, []string{}},
		{`{"location":"a","keywords":["fire",1,"smoke"]}`, []string{"fire", "smoke"}},
	}

	for _, c := range cases {
		var r IncidentRecord
		err := json.Unmarshal([]byte(c.body), &r)
		assert.Nil(t, err, c.body)
		assert.NotNil(t, r.Keywords, c.body)
		assert.Equal(t, c.expected, r.Keywords, c.body)
		assert.Equal(t, "a", r.Location, c.body)
	}
}

func TestUnmarshalConfidence(t *testing.T) {
	var r IncidentRecord
	assert.Nil(t, json.Unmarshal([]byte(`{"confidence_score":0.75}`), &r))
	assert.Equal(t, 0.75, r.ConfidenceScore)

	r = IncidentRecord{}
	assert.Nil(t, json.Unmarshal([]byte(`{"confidence_score":"high"}`), &r))
	assert.Equal(t, 0.0, r.ConfidenceScore)

	r = IncidentRecord{}
	assert.NotNil(t, json.Unmarshal([]byte(`[1,2]`), &r), "a list is not a record")
}

func TestNormalize(t *testing.T) {
	r := IncidentRecord{
		Location:        " Temple road ",
		Severity:        "cRITICAL",
		ConfidenceScore: 1.7,
	}
	r.Normalize()

	assert.Equal(t, "Temple road", r.Location)
	assert.Equal(t, SeverityCritical, r.Severity)
	assert.Equal(t, 1.0, r.ConfidenceScore)
	assert.Equal(t, []string{}, r.Keywords)

	r.ConfidenceScore = -0.2
	r.Normalize()
	assert.Equal(t, 0.0, r.ConfidenceScore)
}

func TestNormalizeSeverity(t *testing.T) {
	assert.Equal(t, "High", NormalizeSeverity("HIGH"))
	assert.Equal(t, "Medium", NormalizeSeverity("medium"))
	assert.Equal(t, "Low", NormalizeSeverity(" low "))
	assert.Equal(t, "", NormalizeSeverity(""))
}

func TestSeverityStyle(t *testing.T) {
	assert.Equal(t, StyleCritical, SeverityStyle("Critical"))
	assert.Equal(t, StyleHigh, SeverityStyle("HIGH"))
	assert.Equal(t, StyleMedium, SeverityStyle("medium"))
	assert.Equal(t, StyleLow, SeverityStyle("Low"))

	for _, s := range []string{"", "Normal", "catastrophic", "??"} {
		assert.Equal(t, StyleNormal, SeverityStyle(s), s)
	}
}

func TestClone(t *testing.T) {
	r := IncidentRecord{
		Location: "Temple",
		Keywords: []string{"trapped"},
		Victims:  &VictimCount{Adults: 2},
	}
	c := r.Clone()
	c.Keywords[0] = "changed"
	c.Victims.Adults = 5

	assert.Equal(t, "trapped", r.Keywords[0])
	assert.Equal(t, 2, r.Victims.Adults)
}

func TestVictimRegistry(t *testing.T) {
	v := VictimRegistry{
		Location: "Old bridge",
		Severity: "HIGH",
		Adults:   "3",
		Children: "x",
		Elderly:  "-1",
		Flags:    []string{"Flooding"},
	}
	r := v.ToIncident()

	assert.Equal(t, "Old bridge", r.Location)
	assert.Equal(t, SeverityHigh, r.Severity)
	assert.Equal(t, []string{"Flooding"}, r.Keywords)
	assert.Equal(t, &VictimCount{Adults: 3}, r.Victims)

	assert.True(t, IsVictimRegistry(map[string]interface{}{"adults": "1"}))
	assert.False(t, IsVictimRegistry(map[string]interface{}{"location": "x"}))
}

func TestUnitPosition(t *testing.T) {
	north := Unit{Angle: 0, Distance: 1}.Position()
	assert.InDelta(t, 50, north.X, 1e-9)
	assert.InDelta(t, 10, north.Y, 1e-9)

	east := Unit{Angle: 90, Distance: 0.5}.Position()
	assert.InDelta(t, 70, east.X, 1e-9)
	assert.InDelta(t, 50, east.Y, 1e-9)

	assert.True(t, Unit{Status: UnitAvailable}.Dispatchable())
	assert.False(t, Unit{Status: UnitBusy}.Dispatchable())
}

func TestDispatchStateActive(t *testing.T) {
	assert.True(t, DispatchCountingDown.Active())
	assert.True(t, DispatchConfirming.Active())
	assert.False(t, DispatchIdle.Active())
	assert.False(t, DispatchAborted.Active())
	assert.False(t, DispatchDispatched.Active())
}

func TestNormalizeMissingLocation(t *testing.T) {
	r := IncidentRecord{Severity: "high"}
	r.Normalize()
	assert.Equal(t, consts.AwaitingData, r.Location)
	assert.True(t, r.IsEmpty())
}
