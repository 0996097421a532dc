package services

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gocart-backend/internal/metrics"
)

// CatalogNotifier pushes catalog change notices to interested clients.
// Services call it after any write that can change what the marketplace
// shows, so browsing clients refresh instead of polling blindly.
type CatalogNotifier interface {
	InvalidateCatalog(reason string)
}

// WebSocketMessage is a message sent over WebSocket
type WebSocketMessage struct {
	Type    string      `json:"type"`
	Reason  string      `json:"reason,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	Conn *websocket.Conn
	Send chan WebSocketMessage
	Hub  *Hub
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan WebSocketMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// WebSocketService handles WebSocket connections and catalog push
type WebSocketService struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewWebSocketService creates a new WebSocket service and starts its hub
func NewWebSocketService() *WebSocketService {
	hub := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan WebSocketMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}

	service := &WebSocketService{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Catalog invalidation is public, read-only data
				return true
			},
		},
	}

	go hub.run()

	return service
}

// InvalidateCatalog broadcasts a catalog.invalidate notice to all clients
func (s *WebSocketService) InvalidateCatalog(reason string) {
	metrics.CatalogInvalidations.Inc()
	select {
	case s.hub.broadcast <- WebSocketMessage{Type: "catalog.invalidate", Reason: reason}:
	default:
		// Hub is backed up; clients will catch up on their next refresh
	}
}

// HandleWebSocket upgrades the connection and registers the client
func (s *WebSocketService) HandleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		Conn: conn,
		Send: make(chan WebSocketMessage, 256),
		Hub:  s.hub,
	}

	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()

			select {
			case client.Send <- WebSocketMessage{Type: "connected", Message: "Connected to catalog feed"}:
			default:
				close(client.Send)
				delete(h.clients, client)
			}

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()

		case message := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	// Clients only listen; inbound frames are drained and discarded so
	// control messages keep flowing.
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
