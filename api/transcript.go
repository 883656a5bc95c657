package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/resqdesk/resqdesk-api/transcript"
	"github.com/resqdesk/resqdesk-api/utils"
)

// startSpeechSession registers the speech engine of the operator browser
func (s *Server) startSpeechSession(c *gin.Context) {
	var params struct {
		Supported  *bool  `json:"supported" binding:"required"`
		Language   string `json:"language"`
		Continuous bool   `json:"continuous"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorInvalidParameters, err)
		return
	}

	err := s.console.StartSpeech(*params.Supported, transcript.Options{
		Continuous: params.Continuous,
		Language:   params.Language,
	})
	if err != nil {
		resp := errorSpeechUnsupported
		resp.Message = utils.Localize(viper.GetString("i18n.lang"), "speech.unsupported", nil)
		abortWithEncoding(c, http.StatusUnprocessableEntity, resp, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": "OK", "listening": s.console.Listening()})
}

// pushPartialTranscript receives the running transcript of the speech engine
func (s *Server) pushPartialTranscript(c *gin.Context) {
	var params struct {
		Text      string `json:"text"`
		Listening *bool  `json:"listening"`
	}

	if err := c.BindJSON(&params); err != nil {
		abortWithEncoding(c, http.StatusBadRequest, errorCannotParseRequest, err)
		return
	}

	listening := true
	if params.Listening != nil {
		listening = *params.Listening
	}
	s.console.PushTranscript(params.Text, listening)

	c.JSON(http.StatusOK, gin.H{"partial": s.console.Partial()})
}

func (s *Server) getTranscript(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"entries":   s.console.Transcript(),
		"partial":   s.console.Partial(),
		"listening": s.console.Listening(),
	})
}

// clearConsole is the hard reset of the console
func (s *Server) clearConsole(c *gin.Context) {
	s.console.HardReset()
	c.JSON(http.StatusOK, gin.H{"result": "OK"})
}
