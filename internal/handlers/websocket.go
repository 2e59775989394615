package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/pphilfre/stake-sub000/internal/models"
	"github.com/pphilfre/stake-sub000/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams resolved results to connected clients. Each
// client subscribes to its own session's feed.
type WebSocketHandler struct {
	sessions *services.SessionManager
	hub      *resultHub
	log      zerolog.Logger
}

type resultHub struct {
	mu      sync.RWMutex
	clients map[string][]*websocket.Conn // sessionID -> connections
}

type wsMessage struct {
	Type    string             `json:"type"`
	Session string             `json:"session,omitempty"`
	Result  *models.GameResult `json:"result,omitempty"`
}

func NewWebSocketHandler(engine *services.WagerEngine, sessions *services.SessionManager, log zerolog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		sessions: sessions,
		hub:      &resultHub{clients: make(map[string][]*websocket.Conn)},
		log:      log.With().Str("component", "ws").Logger(),
	}
	engine.OnResult(h.broadcastResult)
	return h
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	sess := h.sessions.Get(c.GetHeader("X-Session-ID"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.hub.add(sess.ID, conn)
	defer func() {
		h.hub.remove(sess.ID, conn)
		conn.Close()
	}()

	conn.WriteJSON(wsMessage{Type: "connected", Session: sess.ID})

	// The feed is push-only; reads just detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Debug().Err(err).Str("session", sess.ID).Msg("websocket closed")
			}
			return
		}
	}
}

func (h *WebSocketHandler) broadcastResult(sessionID string, result *models.GameResult) {
	h.hub.mu.RLock()
	conns := h.hub.clients[sessionID]
	h.hub.mu.RUnlock()

	msg := wsMessage{Type: "result", Session: sessionID, Result: result}
	for _, conn := range conns {
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debug().Err(err).Str("session", sessionID).Msg("websocket write failed")
		}
	}
}

func (hub *resultHub) add(sessionID string, conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.clients[sessionID] = append(hub.clients[sessionID], conn)
}

func (hub *resultHub) remove(sessionID string, conn *websocket.Conn) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	conns := hub.clients[sessionID]
	for i, c := range conns {
		if c == conn {
			hub.clients[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(hub.clients[sessionID]) == 0 {
		delete(hub.clients, sessionID)
	}
}
