package api

import (
	"context"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/resqdesk/resqdesk-api/console"
	"github.com/resqdesk/resqdesk-api/logmodule"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Server to run a http server instance
type Server struct {
	// Server instance
	server *http.Server

	// Operator console
	console *console.Console

	// websocket upgrader of the event stream
	upgrader websocket.Upgrader
}

// NewServer new instance of server
func NewServer(c *console.Console) *Server {
	return &Server{
		console: c,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// the console is served from another origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.setupRouter(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))
	r.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))

	apiRoute := r.Group("/api")
	apiRoute.Use(logmodule.Ginrus("API"))
	apiRoute.GET("/information", s.information)

	incidentRoute := apiRoute.Group("/incident")
	{
		incidentRoute.GET("", s.currentIncident)
		incidentRoute.POST("/reset", s.resetIncident)
	}

	apiRoute.POST("/speech/session", s.startSpeechSession)

	transcriptRoute := apiRoute.Group("/transcript")
	{
		transcriptRoute.GET("", s.getTranscript)
		transcriptRoute.POST("/partial", s.pushPartialTranscript)
		transcriptRoute.DELETE("", s.clearConsole)
	}

	callRoute := apiRoute.Group("/call")
	{
		callRoute.GET("", s.getCall)
		callRoute.POST("/ptt", s.pushToTalk)
		callRoute.POST("/end", s.endCall)
	}

	dispatchRoute := apiRoute.Group("/dispatch")
	{
		dispatchRoute.GET("", s.getDispatch)
		dispatchRoute.POST("/cancel", s.cancelDispatch)
	}

	unitRoute := apiRoute.Group("/units")
	{
		unitRoute.GET("", s.getUnits)
		unitRoute.POST("/:unitID/dispatch", s.dispatchUnit)
	}

	apiRoute.GET("/dispatches", s.listDispatches)

	r.GET("/ws", logmodule.Ginrus("WS"), s.eventStream)
	r.GET("/healthz", s.healthz)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// shouldInterupt sends error message and determine if it should interupt the current flow
func shouldInterupt(err error, c *gin.Context) bool {
	if err == nil {
		return false
	}

	log.Error(err)
	abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
	return true
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	// Ping archive
	err := s.console.Ping(ctx)
	if shouldInterupt(err, c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"version": viper.GetString("server.version"),
	})
}

func (s *Server) information(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"information": map[string]interface{}{
			"server": map[string]interface{}{
				"version": viper.GetString("server.version"),
			},
			"clock": s.console.Clock(),
			"timings": map[string]interface{}{
				"debounce":           viper.GetDuration("transcript.debounce").String(),
				"dispatch_delay":     viper.GetDuration("dispatch.delay").String(),
				"dispatch_countdown": viper.GetInt("dispatch.countdown"),
				"dispatch_confirm":   viper.GetDuration("dispatch.confirm").String(),
			},
			"system_version": "RESQDESK 0.1",
			"metrics":        s.console.Metrics(),
		},
	})
}

func responseWithEncoding(c *gin.Context, code int, obj ErrorResponse) {
	acceptEncoding := c.GetHeader("Accept-Encoding")
	switch acceptEncoding {
	default:
		c.JSON(code, obj)
	}
}

func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errors ...error) {
	for _, err := range errors {
		c.Error(err)
	}
	responseWithEncoding(c, code, obj)
	c.Abort()
}
