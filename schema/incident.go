package schema

import (
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/resqdesk/resqdesk-api/consts"
)

const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
	SeverityNormal   = "Normal"
)

// display buckets of the incident form
const (
	StyleCritical = "critical"
	StyleHigh     = "high"
	StyleMedium   = "medium"
	StyleLow      = "low"
	StyleNormal   = "normal"
)

// Coordinates is a geocoded position of an incident location
type Coordinates struct {
	Latitude         float64 `json:"lat"`
	Longitude        float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
}

// VictimCount is the number of people involved in an incident
type VictimCount struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Elderly  int `json:"elderly"`
}

// IncidentRecord is the incident extracted from a caller's utterances.
// Exactly one record is current at a time.
type IncidentRecord struct {
	ID              string       `json:"id,omitempty"`
	Location        string       `json:"location"`
	EmergencyType   string       `json:"emergency_type"`
	Severity        string       `json:"severity"`
	Keywords        []string     `json:"keywords"`
	Reasoning       string       `json:"reasoning"`
	ConfidenceScore float64      `json:"confidence_score"`
	SuggestedUnit   string       `json:"suggested_unit,omitempty"`
	Victims         *VictimCount `json:"victims,omitempty"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	ReceivedAt      *time.Time   `json:"received_at,omitempty"`
}

// EmptyIncident returns the placeholder record used while no incident is
// active.
func EmptyIncident() IncidentRecord {
	return IncidentRecord{
		Location: consts.AwaitingData,
		Keywords: []string{},
	}
}

// IsEmpty tells if the record is the placeholder record
func (r IncidentRecord) IsEmpty() bool {
	loc := strings.TrimSpace(r.Location)
	return loc == "" || loc == consts.AwaitingData
}

// Normalize cleans up the fields coming from the analysis service. A
// record without location keeps the placeholder location.
func (r *IncidentRecord) Normalize() {
	r.Location = strings.TrimSpace(r.Location)
	if r.Location == "" {
		r.Location = consts.AwaitingData
	}
	r.Severity = NormalizeSeverity(r.Severity)
	if r.Keywords == nil {
		r.Keywords = []string{}
	}
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	} else if r.ConfidenceScore > 1 {
		r.ConfidenceScore = 1
	}
}

// Clone returns a deep copy of the record
func (r IncidentRecord) Clone() IncidentRecord {
	c := r
	c.Keywords = append([]string{}, r.Keywords...)
	if r.Victims != nil {
		v := *r.Victims
		c.Victims = &v
	}
	if r.Coordinates != nil {
		p := *r.Coordinates
		c.Coordinates = &p
	}
	if r.ReceivedAt != nil {
		t := *r.ReceivedAt
		c.ReceivedAt = &t
	}
	return c
}

// UnmarshalJSON decodes a record leniently. A `keywords` value which is not
// a list of strings decodes as an empty list and a non-numeric
// `confidence_score` decodes as zero.
func (r *IncidentRecord) UnmarshalJSON(data []byte) error {
	type plain IncidentRecord
	var raw struct {
		plain
		Keywords        json.RawMessage `json:"keywords"`
		ConfidenceScore json.RawMessage `json:"confidence_score"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = IncidentRecord(raw.plain)
	r.Keywords = decodeStringList(raw.Keywords)

	var score float64
	if err := json.Unmarshal(raw.ConfidenceScore, &score); err == nil {
		r.ConfidenceScore = score
	}
	return nil
}

func decodeStringList(data json.RawMessage) []string {
	list := []string{}
	if len(data) == 0 {
		return list
	}

	var items []interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return list
	}

	for _, item := range items {
		if s, ok := item.(string); ok {
			list = append(list, s)
		}
	}
	return list
}

// NormalizeSeverity capitalizes the first letter of a severity and lowercases
// the rest.
func NormalizeSeverity(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// a Caser keeps state, so it is not shared between goroutines
	return cases.Title(language.English).String(strings.ToLower(s))
}

// SeverityStyle maps a severity onto its display bucket. Unknown severities
// fall back to the normal bucket.
func SeverityStyle(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case StyleCritical:
		return StyleCritical
	case StyleHigh:
		return StyleHigh
	case StyleMedium:
		return StyleMedium
	case StyleLow:
		return StyleLow
	default:
		return StyleNormal
	}
}
