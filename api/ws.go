package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/resqdesk/resqdesk-api/store"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// eventStream upgrades the request and streams console events. The panels
// receive the current state first so they never wait for a change.
func (s *Server) eventStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("websocket upgrade")
		return
	}
	defer conn.Close()

	events, unsubscribe := s.console.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go s.readLoop(conn, done)

	now := time.Now()
	initial := []store.Event{
		{Kind: store.EventIncident, Data: s.console.Incident(), At: now},
		{Kind: store.EventTranscript, Data: gin.H{"entries": s.console.Transcript(), "partial": s.console.Partial()}, At: now},
		{Kind: store.EventDispatch, Data: s.console.Dispatch(), At: now},
		{Kind: store.EventUnits, Data: s.console.Units(), At: now},
		{Kind: store.EventClock, Data: gin.H{"clock": s.console.Clock(), "call": s.console.Call()}, At: now},
	}
	for _, e := range initial {
		if err := writeEvent(conn, e); err != nil {
			return
		}
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := writeEvent(conn, e); err != nil {
				log.WithError(err).Debug("websocket write")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop drains the client messages so control frames are handled. It
// closes done once the client goes away.
func (s *Server) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.WithError(err).Warn("websocket closed")
			}
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, e store.Event) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(e)
}
