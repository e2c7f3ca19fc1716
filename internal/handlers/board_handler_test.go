package handlers_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propertystore/internal/handlers"
	"propertystore/internal/realtime"
)

func TestBoard_WithoutPipelineSeesEveryPipeline(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	hub := realtime.NewBoardHub(log)

	r := gin.New()
	r.GET("/ws/board", handlers.NewBoardHandler(hub).ServeWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/board", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(realtime.BoardMessage{Action: "moved", DealID: "d1", PipelineID: "p1"})
	hub.Broadcast(realtime.BoardMessage{Action: "closed", DealID: "d2", PipelineID: "p2"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{"d1", "d2"} {
		var got realtime.BoardMessage
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, want, got.DealID)
	}
}
