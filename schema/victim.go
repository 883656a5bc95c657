package schema

import (
	"strconv"
	"strings"
)

// VictimRegistry is the older shape of an analysis result which counts the
// victims instead of describing the incident. It is adapted into an
// IncidentRecord.
type VictimRegistry struct {
	Location      string   `json:"location"`
	EmergencyType string   `json:"emergencyType"`
	Severity      string   `json:"severity"`
	Adults        string   `json:"adults"`
	Children      string   `json:"children"`
	Elderly       string   `json:"elderly"`
	Flags         []string `json:"flags"`
}

// IsVictimRegistry tells if a decoded json object carries the victim
// registry fields.
func IsVictimRegistry(fields map[string]interface{}) bool {
	for _, k := range []string{"adults", "children", "elderly", "flags"} {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}

// ToIncident converts the registry into the canonical incident record
func (v VictimRegistry) ToIncident() IncidentRecord {
	r := IncidentRecord{
		Location:      v.Location,
		EmergencyType: v.EmergencyType,
		Severity:      v.Severity,
		Keywords:      append([]string{}, v.Flags...),
		Victims: &VictimCount{
			Adults:   parseCount(v.Adults),
			Children: parseCount(v.Children),
			Elderly:  parseCount(v.Elderly),
		},
	}
	r.Normalize()
	return r
}

func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
