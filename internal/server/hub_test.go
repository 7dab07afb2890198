package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quant-trader/internal/models"
)

func hubLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func streamTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		c := hub.add(conn)
		go hub.writeLoop(c)
		go hub.readLoop(c)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func dialStream(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubPublishReachesClients(t *testing.T) {
	hub := NewHub(hubLogger())
	ts := streamTestServer(t, hub)

	conn := dialStream(t, ts)

	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	published := models.NewMatchEvent("match_1",
		models.EventDetail{Kind: models.EventGoal, Team: "Arsenal", Minute: 10},
		"Arsenal", "Chelsea", "Premier League", "2024-25")
	hub.Publish(published)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var received models.MatchEvent
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, "match_1", received.MatchID)
	assert.Equal(t, models.EventGoal, received.Detail.Kind)
}

func TestHubRemovesDisconnectedClients(t *testing.T) {
	hub := NewHub(hubLogger())
	ts := streamTestServer(t, hub)

	conn := dialStream(t, ts)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHubCloseDisconnectsAll(t *testing.T) {
	hub := NewHub(hubLogger())
	ts := streamTestServer(t, hub)

	dialStream(t, ts)
	dialStream(t, ts)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubPublishWithoutClientsIsNoOp(t *testing.T) {
	hub := NewHub(hubLogger())
	event := models.NewMatchEvent("match_1",
		models.EventDetail{Kind: models.EventMatchStart},
		"Arsenal", "Chelsea", "Premier League", "2024-25")
	hub.Publish(event)
	assert.Equal(t, 0, hub.ClientCount())
}
