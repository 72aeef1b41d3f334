package chat

import (
	"encoding/json"
	"net/http"

	"nutscredit/internal/conversation"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for dev simplicity
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client represents a single connected chat endpoint
type Client struct {
	hub    *Hub
	router *Router
	conn   *websocket.Conn
	send   chan []byte
	chatID string
	caller conversation.Caller
}

// writePump handles writing queued frames to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump pumps inbound frames from the connection into the router.
// Frames from one connection are dispatched strictly in order, which is
// what keeps conversation steps sequential within a session.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn().Err(err).Str("chat_id", c.chatID).Msg("chat read error")
			}
			break
		}

		var frame InboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.hub.log.Warn().Err(err).Str("chat_id", c.chatID).Msg("malformed inbound frame")
			continue
		}

		c.router.HandleFrame(c.caller, frame)
	}
}

// ServeWs authenticates a chat endpoint and attaches it to the hub. The
// token's subject is the chat address and caller identity; the name claim
// is the display name matched against the Admins table.
func ServeWs(hub *Hub, router *Router, c *gin.Context, secret []byte) {
	tokenString := c.Query("token")
	if tokenString == "" {
		hub.log.Warn().Msg("chat connection rejected: missing token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		hub.log.Warn().Err(err).Msg("chat connection rejected: invalid token")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		hub.log.Warn().Msg("chat connection rejected: invalid claims")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	if sub == "" {
		hub.log.Warn().Msg("chat connection rejected: missing subject")
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.Warn().Err(err).Msg("chat upgrade failed")
		return
	}

	client := &Client{
		hub:    hub,
		router: router,
		conn:   conn,
		send:   make(chan []byte, 256),
		chatID: sub,
		caller: conversation.Caller{ChatID: sub, UserID: sub, DisplayName: name},
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
