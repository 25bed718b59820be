package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/conquest-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Send pings with this period; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize = 512

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// ConnectedMessage is the first message written to every new client
type ConnectedMessage struct {
	Type   string `json:"type"`
	GameID uint32 `json:"game_id"`
}

// Client is one websocket watching a game
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	playerID    model.PlayerID
	send        chan []byte
	connectedAt time.Time
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the request and streams the game's events until either side
// closes the connection
func ServeWS(w http.ResponseWriter, r *http.Request, manager *HubManager, gameID model.GameID, playerID model.PlayerID) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		manager.logger.Warn("websocket upgrade failed",
			slog.String("game_id", gameID.String()),
			slog.String("error", err.Error()))
		return
	}

	client := &Client{
		conn:        conn,
		playerID:    playerID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
	hello, _ := json.Marshal(ConnectedMessage{Type: "connected", GameID: uint32(gameID)})
	client.send <- hello

	if !manager.Attach(gameID, client) {
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream closed"))
		_ = conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}

// readPump discards client frames and notices when the peer goes away
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards queued messages and keeps the connection alive
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
