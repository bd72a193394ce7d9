package realtime

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"turfbook/internal/pkg/jwt"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Tokens travel in the query string, so origin is not a credential here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler streams one table's INSERT events to the authenticated recipient.
type WSHandler struct {
	hub        *Hub
	jwtService *jwt.Service
	table      string
}

func NewWSHandler(hub *Hub, jwtService *jwt.Service, table string) *WSHandler {
	return &WSHandler{hub: hub, jwtService: jwtService, table: table}
}

// Serve handles GET /realtime/v1/<table>?token=JWT.
//
// Browsers cannot set headers on a websocket handshake, so the JWT comes from the query.
func (h *WSHandler) Serve(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is required. Use ?token=YOUR_JWT_TOKEN"})
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("realtime_upgrade_failed user_id=%s err=%v", claims.UserID, err)
		return
	}

	sub := h.hub.Subscribe(Filter{
		Table: h.table,
		Type:  EventInsert,
		Key:   claims.UserID.String(),
	})
	log.Printf("realtime_connected user_id=%s table=%s", claims.UserID, h.table)

	go writePump(conn, sub)
	readPump(conn, sub)
	log.Printf("realtime_disconnected user_id=%s table=%s", claims.UserID, h.table)
}

// readPump only services control frames; client payloads are ignored.
func readPump(conn *websocket.Conn, sub *Subscription) {
	defer func() {
		sub.Cancel()
		conn.Close()
	}()

	conn.SetReadLimit(maxMsgSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("realtime_read_error err=%v", err)
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, sub *Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
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
