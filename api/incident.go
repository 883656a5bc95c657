package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resqdesk/resqdesk-api/schema"
	"github.com/resqdesk/resqdesk-api/store"
)

func (s *Server) incidentResponse(snap store.Snapshot) gin.H {
	return gin.H{
		"incident":       snap.Incident,
		"generation":     snap.Generation,
		"active":         !snap.Incident.IsEmpty(),
		"severity_style": schema.SeverityStyle(snap.Incident.Severity),
		"dispatch":       s.console.Dispatch(),
	}
}

// currentIncident is the API for the incident form and the map panel
func (s *Server) currentIncident(c *gin.Context) {
	c.JSON(http.StatusOK, s.incidentResponse(s.console.Incident()))
}

// resetIncident clears the current incident and aborts a pending dispatch
func (s *Server) resetIncident(c *gin.Context) {
	c.JSON(http.StatusOK, s.incidentResponse(s.console.ResetIncident()))
}
