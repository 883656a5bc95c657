package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) getCall(c *gin.Context) {
	c.JSON(http.StatusOK, s.console.Call())
}

// pushToTalk switches the operator microphone
func (s *Server) pushToTalk(c *gin.Context) {
	var params struct {
		Active *bool `json:"active" binding:"required"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	s.console.SetPushToTalk(*params.Active)
	c.JSON(http.StatusOK, s.console.Call())
}

func (s *Server) endCall(c *gin.Context) {
	c.JSON(http.StatusOK, s.console.EndCall())
}
