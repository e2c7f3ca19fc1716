package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// BoardMessage is pushed to every open board when a deal changes.
type BoardMessage struct {
	Action     string `json:"action"` // moved | created | closed | reopened | deleted
	DealID     string `json:"dealId"`
	PipelineID string `json:"pipelineId"`
	FromStage  string `json:"fromStageId,omitempty"`
	ToStage    string `json:"toStageId,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// boardClient is one open board. Only its writer goroutine touches conn for writing.
type boardClient struct {
	pipelineID string
	conn       *websocket.Conn
	send       chan BoardMessage
}

func (c *boardClient) writeLoop(log logrus.FieldLogger) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			log.WithError(err).Debug("[ws][board] write failed")
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// BoardHub keeps the set of connected board clients per pipeline.
// An empty pipeline key subscribes to every pipeline.
type BoardHub struct {
	mu      sync.Mutex
	clients map[string]map[*boardClient]struct{}
	log     logrus.FieldLogger
}

func NewBoardHub(log logrus.FieldLogger) *BoardHub {
	return &BoardHub{
		clients: make(map[string]map[*boardClient]struct{}),
		log:     log,
	}
}

func (h *BoardHub) register(c *boardClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.pipelineID] == nil {
		h.clients[c.pipelineID] = make(map[*boardClient]struct{})
	}
	h.clients[c.pipelineID][c] = struct{}{}
}

func (h *BoardHub) unregister(c *boardClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked closes the send queue once; the writer then closes the socket.
func (h *BoardHub) dropLocked(c *boardClient) {
	conns, ok := h.clients[c.pipelineID]
	if !ok {
		return
	}
	if _, ok := conns[c]; !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, c.pipelineID)
	}
	close(c.send)
}

// Broadcast queues msg for subscribers of its pipeline and for global
// subscribers. It never waits on a socket: a client whose queue is full is dropped.
func (h *BoardHub) Broadcast(msg BoardMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, key := range []string{msg.PipelineID, ""} {
		for c := range h.clients[key] {
			select {
			case c.send <- msg:
			default:
				h.log.WithField("pipeline_id", key).Warn("[ws][board] slow client dropped")
				h.dropLocked(c)
			}
		}
		if msg.PipelineID == "" {
			break
		}
	}
}

// Count returns the number of connected clients.
func (h *BoardHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

// ServeWS upgrades the request and keeps the connection registered until the
// client goes away. Incoming frames are ignored.
func (h *BoardHub) ServeWS(w http.ResponseWriter, r *http.Request, pipelineID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("[ws][board] upgrade failed")
		return
	}
	c := &boardClient{pipelineID: pipelineID, conn: conn, send: make(chan BoardMessage, sendBuffer)}
	h.register(c)
	go c.writeLoop(h.log)
	defer h.unregister(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
