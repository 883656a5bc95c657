package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resqdesk/resqdesk-api/schema"
	"github.com/resqdesk/resqdesk-api/store"
)

const (
	defaultDispatchListSize = 20
	maxDispatchListSize     = 100
)

func (s *Server) getDispatch(c *gin.Context) {
	c.JSON(http.StatusOK, s.console.Dispatch())
}

// cancelDispatch is the abort button of the dispatch overlay
func (s *Server) cancelDispatch(c *gin.Context) {
	if !s.console.CancelDispatch() {
		abortWithEncoding(c, http.StatusConflict, errorNoDispatchActive)
		return
	}

	c.JSON(http.StatusOK, s.console.Dispatch())
}

// listDispatches returns the latest completed dispatches
func (s *Server) listDispatches(c *gin.Context) {
	count := int64(defaultDispatchListSize)
	if v := c.Query("count"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
			return
		}
		if n <= 0 {
			abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters)
			return
		}
		count = n
	}
	if count > maxDispatchListSize {
		count = maxDispatchListSize
	}

	records, err := s.console.Archive(c.Request.Context(), count)
	if err != nil {
		if err == store.ErrArchiveUnavailable {
			abortWithEncoding(c, http.StatusServiceUnavailable, errorArchiveUnavailable, err)
		} else {
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer, err)
		}
		return
	}

	if records == nil {
		records = []schema.DispatchRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"dispatches": records})
}
