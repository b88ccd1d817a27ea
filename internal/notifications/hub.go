package notifications

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// FeedEvent is the payload delivered to feed subscribers. Every event
// replaces the subscriber's previous item list wholesale.
type FeedEvent struct {
	Event string        `json:"event"`
	Items []VisibleItem `json:"items"`
}

type feedClient struct {
	conn *websocket.Conn
	send chan FeedEvent
}

// Hub fans feed snapshots out to connected viewers, keyed by user ID.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uuid.UUID]map[*feedClient]struct{}
	upgrader websocket.Upgrader
	sendBuf  int
}

// NewHub constructs a feed hub.
func NewHub(sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 16
	}
	return &Hub{
		clients: make(map[uuid.UUID]map[*feedClient]struct{}),
		sendBuf: sendBuffer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Serve upgrades the HTTP connection to a WebSocket and registers the
// viewer. Blocks until the client disconnects. The onSubscribe callback
// runs once after registration so the caller can push an initial snapshot.
func (h *Hub) Serve(viewerID uuid.UUID, w http.ResponseWriter, r *http.Request, onSubscribe func()) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	cl := &feedClient{
		conn: conn,
		send: make(chan FeedEvent, h.sendBuf),
	}

	h.addClient(viewerID, cl)
	defer h.removeClient(viewerID, cl)

	if onSubscribe != nil {
		onSubscribe()
	}

	go h.writeLoop(cl)
	h.readLoop(cl)
	return nil
}

// Publish delivers the viewer's current item list to every connection
// that viewer holds. Slow consumers are skipped rather than blocking
// the rest.
func (h *Hub) Publish(viewerID uuid.UUID, items []VisibleItem) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event := FeedEvent{Event: "feed.snapshot", Items: items}
	for cl := range h.clients[viewerID] {
		select {
		case cl.send <- event:
		default:
		}
	}
}

// Viewers returns the user IDs with at least one live connection.
func (h *Hub) Viewers() []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]uuid.UUID, 0, len(h.clients))
	for id := range h.clients {
		out = append(out, id)
	}
	return out
}

// HasViewer reports whether the user currently holds a connection.
func (h *Hub) HasViewer(viewerID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[viewerID]) > 0
}

func (h *Hub) addClient(viewerID uuid.UUID, cl *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[viewerID] == nil {
		h.clients[viewerID] = make(map[*feedClient]struct{})
	}
	h.clients[viewerID][cl] = struct{}{}
}

func (h *Hub) removeClient(viewerID uuid.UUID, cl *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients := h.clients[viewerID]; clients != nil {
		delete(clients, cl)
		if len(clients) == 0 {
			delete(h.clients, viewerID)
		}
	}
	close(cl.send)
	_ = cl.conn.Close()
}

func (h *Hub) writeLoop(cl *feedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cl.conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readLoop(cl *feedClient) {
	defer func() { _ = cl.conn.Close() }()

	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
