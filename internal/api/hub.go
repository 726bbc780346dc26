/*
Package api
File: hub.go
Description:
    The WebSocket Hub is the core of the real-time communication layer.

    It maintains a registry of all active clients (browser tabs watching the
    session) and manages the broadcast channel. Ledger changes, reel events
    and finished appraisals are published to the Hub, which writes them to
    the socket of every connected client.

    Clients may also send intents ("cast", "reel") which are handed to the
    Server exactly as if they had arrived over REST.

    Architecture:
    - Hub: One per server.
    - Client: Represents one browser connection.
    - ServeWs: The HTTP handler that upgrades a standard GET request to a WebSocket.
*/

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Outbound message types.
const (
	TypeState       = "state"
	TypeReel        = "reel"
	TypeAchievement = "achievement_unlocked"
	TypeAppraisal   = "appraisal"
)

// Inbound intent types.
const (
	IntentCast = "cast"
	IntentReel = "reel"
)

const SenderSystem = "system"

const writeWait = 10 * time.Second

// Message defines the standard JSON envelope for all real-time communication.
// Every message sent over the socket will follow this structure.
type Message struct {
	Type    string `json:"type"`              // Event Type (e.g., "state", "reel")
	Payload any    `json:"payload,omitempty"` // The actual data
	Sender  string `json:"sender,omitempty"`  // ID of the origin (system or client)
}

// Client represents a single connected browser tab.
// It acts as a middleman between the websocket connection and the Hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte // Buffered channel for outbound messages
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{} // closed when Run returns

	upgrader websocket.Upgrader
	log      *zap.Logger

	// Set by NewServer.
	greet   func() []Message
	intents func(Message)
}

// NewHub creates a Hub. allowedOrigin "*" accepts any origin.
func NewHub(allowedOrigin string, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log.Named("hub"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" || allowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}
	return h
}

// Run is the main event loop for the Hub. It blocks until ctx is done,
// then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return nil

		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug("client registered", zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// If the client's send buffer is full, assume they hung or disconnected.
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Publish wraps payload in the envelope and queues it for every client.
// It is a no-op once the Hub has stopped.
func (h *Hub) Publish(msgType string, payload any) {
	b, err := json.Marshal(Message{Type: msgType, Payload: payload, Sender: SenderSystem})
	if err != nil {
		h.log.Error("marshal broadcast", zap.String("type", msgType), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- b:
	case <-h.done:
	}
}

// ServeWs handles the HTTP request that initiates a WebSocket connection.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := hub.upgrader.Upgrade(w, r, nil)
	if err != nil {
		hub.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 256)}

	// Greet before registering so the snapshot precedes any broadcast.
	if hub.greet != nil {
		for _, msg := range hub.greet() {
			b, err := json.Marshal(msg)
			if err != nil {
				hub.log.Error("marshal greeting", zap.Error(err))
				continue
			}
			client.send <- b
		}
	}

	select {
	case hub.register <- client:
	case <-hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump pumps intents from the websocket connection to the Server.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("websocket read", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.hub.log.Debug("malformed socket message", zap.Error(err))
			continue
		}
		if c.hub.intents != nil {
			c.hub.intents(msg)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	defer c.conn.Close()

	// Range over the channel. This loop exits when c.send is closed.
	for message := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
