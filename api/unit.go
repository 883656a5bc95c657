package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resqdesk/resqdesk-api/console"
)

func (s *Server) getUnits(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"units": s.console.Units()})
}

// dispatchUnit sends a unit from the map panel
func (s *Server) dispatchUnit(c *gin.Context) {
	id := c.Param("unitID")

	unit, message, err := s.console.DispatchUnit(id)
	if err != nil {
		switch err {
		case console.ErrNoIncident:
			abortWithEncoding(c, http.StatusConflict, errorNoIncident, err)
		case console.ErrUnitNotFound:
			abortWithEncoding(c, http.StatusNotFound, errorUnitNotFound, err)
		case console.ErrUnitBusy:
			abortWithEncoding(c, http.StatusConflict, errorUnitBusy, err)
		case console.ErrUnitDispatched:
			abortWithEncoding(c, http.StatusConflict, errorUnitDispatched, err)
		default:
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unit":    unit,
		"message": message,
	})
}
