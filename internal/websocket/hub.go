package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"backend/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

// Event is a change notification delivered to the owning account's sessions,
// e.g. so a dashboard open on another device refreshes.
type Event struct {
	Type       string      `json:"type"` // e.g. quote.status_changed
	EntityKind string      `json:"entity_kind"`
	Payload    interface{} `json:"payload,omitempty"`
}

type envelope struct {
	accountID uuid.UUID
	data      []byte
}

// Client represents a single connected WebSocket session of one account
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	accountID uuid.UUID
	send      chan []byte
}

// Hub maintains the set of active clients and routes events to the sessions
// of the account they belong to.
type Hub struct {
	clients    map[*Client]bool
	events     chan envelope
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
}

// NewHub initializes a new WS Hub instance
func NewHub() *Hub {
	return &Hub{
		events:     make(chan envelope, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Publish queues an event for every open session of the given account.
// Safe to call with a nil hub so services can run without realtime wiring.
func (h *Hub) Publish(accountID uuid.UUID, event Event) {
	if h == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Println("websocket: marshal event:", err)
		return
	}
	h.events <- envelope{accountID: accountID, data: data}
}

// Run starts the core dispatch loop for WebSocket events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case ev := <-h.events:
			h.mu.Lock()
			for client := range h.clients {
				if client.accountID != ev.accountID {
					continue
				}
				select {
				case client.send <- ev.data:
				default:
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ServeWs authenticates the connection (token query param or cookie) and
// upgrades it to a WebSocket session bound to the resolved account.
func ServeWs(hub *Hub, c *gin.Context, manager *auth.Manager) {
	tokenString := c.Query("token")
	if tokenString == "" {
		tokenString, _ = c.Cookie("access_token")
	}

	accountID, err := manager.Verify(tokenString)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("websocket: upgrade failed:", err)
		return
	}

	client := &Client{hub: hub, conn: conn, accountID: accountID, send: make(chan []byte, 16)}
	hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}

func (c *Client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readLoop drains inbound frames; the protocol is server-push only, so reads
// exist to detect closure.
func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
