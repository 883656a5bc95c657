package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resqdesk/resqdesk-api/store"
)

type wireEvent struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

func TestEventStream(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.router)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.Nil(t, err)
	defer conn.Close()

	read := func() wireEvent {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var e wireEvent
		require.Nil(t, conn.ReadJSON(&e))
		return e
	}

	kinds := []string{}
	for i := 0; i < 5; i++ {
		kinds = append(kinds, read().Kind)
	}
	assert.Equal(t, []string{
		store.EventIncident,
		store.EventTranscript,
		store.EventDispatch,
		store.EventUnits,
		store.EventClock,
	}, kinds, "current state comes first")

	env.console.SetPushToTalk(true)
	e := read()
	assert.Equal(t, store.EventCall, e.Kind)

	var call struct {
		PushToTalk bool `json:"push_to_talk"`
	}
	require.Nil(t, json.Unmarshal(e.Data, &call))
	assert.True(t, call.PushToTalk)
}
