package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/remihome/remi-card/internal/pkg/model"
	"github.com/remihome/remi-card/internal/pkg/view"
)

// Hub pushes card updates, slider previews and more-info events to connected
// dashboard clients. Clients are write-only; anything they send is discarded.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// client owns one websocket connection. All writes funnel through send and a
// single writer goroutine; the gorilla connection forbids concurrent writers.
type client struct {
	conn *websocket.Conn
	send chan event
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
		logger:  zap.L(),
	}
}

// event is the envelope pushed to dashboards.
type event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	cl := &client{conn: conn, send: make(chan event, 64)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("dashboard connected", zap.String("remote", r.RemoteAddr))

	go h.writeLoop(cl)

	// Read loop only to detect disconnects.
	go func() {
		defer h.drop(cl)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) writeLoop(cl *client) {
	for ev := range cl.send {
		if err := cl.conn.WriteJSON(ev); err != nil {
			h.drop(cl)
			return
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
	h.mu.Unlock()
	_ = cl.conn.Close()
}

// broadcast queues the event for every client. Sends happen under the map
// lock, so a channel is never written after drop closed it; a client whose
// buffer is full skips the event, the next card push supersedes it.
func (h *Hub) broadcast(ev event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- ev:
		default:
		}
	}
}

// CardUpdated pushes the re-rendered card after every snapshot change.
func (h *Hub) CardUpdated(card view.CardView) {
	h.broadcast(event{Type: "card", Payload: card})
}

// BrightnessPreview mirrors slider drags to other open dashboards without
// touching the host.
func (h *Hub) BrightnessPreview(light model.EntityID, pct int) {
	h.broadcast(event{Type: "brightness-preview", Payload: map[string]any{
		"entity_id":      light,
		"brightness_pct": pct,
	}})
}

// MoreInfo asks dashboards to open the host's detail view for an entity.
func (h *Hub) MoreInfo(id model.EntityID) {
	h.broadcast(event{Type: "more-info", Payload: map[string]any{
		"entity_id": id,
	}})
}
