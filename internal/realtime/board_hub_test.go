package realtime

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
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func dial(t *testing.T, srv *httptest.Server, pipeline string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?pipelineId=" + pipeline
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, h *BoardHub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Count() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestBoardHub_BroadcastByPipeline(t *testing.T) {
	hub := NewBoardHub(quietLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("pipelineId"))
	}))
	defer srv.Close()

	p1 := dial(t, srv, "p1")
	all := dial(t, srv, "")
	p2 := dial(t, srv, "p2")
	waitClients(t, hub, 3)

	hub.Broadcast(BoardMessage{Action: "moved", DealID: "d1", PipelineID: "p1", FromStage: "a", ToStage: "b"})

	for _, c := range []*websocket.Conn{p1, all} {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got BoardMessage
		require.NoError(t, c.ReadJSON(&got))
		assert.Equal(t, "d1", got.DealID)
		assert.Equal(t, "b", got.ToStage)
	}

	_ = p2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var none BoardMessage
	assert.Error(t, p2.ReadJSON(&none), "other pipelines get nothing")
}

func TestBoardHub_UnregisterOnDisconnect(t *testing.T) {
	hub := NewBoardHub(quietLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, "p1")
	}))
	defer srv.Close()

	c := dial(t, srv, "p1")
	waitClients(t, hub, 1)
	require.NoError(t, c.Close())
	waitClients(t, hub, 0)
}

func TestBoardHub_SlowClientDropped(t *testing.T) {
	hub := NewBoardHub(quietLogger())
	slow := &boardClient{pipelineID: "p1", send: make(chan BoardMessage, 1)}
	hub.register(slow)

	start := time.Now()
	hub.Broadcast(BoardMessage{Action: "moved", DealID: "d1", PipelineID: "p1"})
	hub.Broadcast(BoardMessage{Action: "moved", DealID: "d2", PipelineID: "p1"})
	assert.Less(t, time.Since(start), time.Second, "broadcast does not wait for the reader")
	assert.Equal(t, 0, hub.Count())

	got, ok := <-slow.send
	require.True(t, ok)
	assert.Equal(t, "d1", got.DealID)
	_, ok = <-slow.send
	assert.False(t, ok, "queue closed after drop")

	hub.unregister(slow)
}
