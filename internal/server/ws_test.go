package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfall/mindfall-server/internal/game"
)

func TestWebSocket_StreamsState(t *testing.T) {
	ts := newTestServer(t)
	gameID := createAndJoin(t, ts)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/games/" + gameID + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The current state arrives immediately on connect.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg StateMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "state", msg.Type)
	require.NotNil(t, msg.State)
	assert.Equal(t, gameID, msg.State.ID)
	assert.Equal(t, game.StatusActive, msg.State.Status)

	// Applying an action pushes the new state to subscribers.
	payload := map[string]any{
		"type": "CHANGE_PHASE",
		"data": map[string]string{"phase": "main"},
	}
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/games/"+gameID+"/actions", "p1", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "main", string(msg.State.Phase))
}

func TestWebSocket_UnknownGame(t *testing.T) {
	ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/games/nope/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
