package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"androidmirror/models"
	"androidmirror/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10 // 54 seconds
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

type Client struct {
	hub        *WebSocketHub
	conn       *websocket.Conn
	send       chan []byte
	subscribed map[string]bool
	sm         *service.SessionManager
}

type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("Client connected (total: %d)", len(h.clients))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("Client disconnected (total: %d)", len(h.clients))
		}
	}
}

// NotifyDevice sends a JSON message to clients subscribed to a device.
// Implements service.ScreenNotifier.
func (h *WebSocketHub) NotifyDevice(deviceID string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messageBytes, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	for client := range h.clients {
		if client.subscribed[deviceID] || client.subscribed["all"] {
			select {
			case client.send <- messageBytes:
			default:
				log.Printf("⚠️ Client channel full, skipping message")
			}
		}
	}
}

// BroadcastToAll sends a JSON message to every connected client
func (h *WebSocketHub) BroadcastToAll(payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messageBytes, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	for client := range h.clients {
		select {
		case client.send <- messageBytes:
		default:
			log.Printf("⚠️ Client channel full, skipping")
		}
	}
}

func HandleWebSocket(hub *WebSocketHub, sm *service.SessionManager, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		subscribed: make(map[string]bool),
		sm:         sm,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// wsMessage is the envelope for inbound websocket messages: subscription
// management plus host input events addressed to a device
type wsMessage struct {
	Type     string `json:"type"`
	DeviceID string `json:"device_id"`

	models.InputEvent
}

// readPump handles incoming messages: subscriptions, frame reports and
// input events
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1 << 20) // 1MB max message size
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("⚠️ Unparseable websocket message: %v", err)
			continue
		}

		switch msg.Type {
		case "subscribe":
			c.subscribed[msg.DeviceID] = true
			log.Printf("Client subscribed to device %s", msg.DeviceID)

		case "unsubscribe":
			delete(c.subscribed, msg.DeviceID)
			log.Printf("Client unsubscribed from device %s", msg.DeviceID)

		case "frame":
			// rendered-frame report for the FPS counter
			if session := c.sm.Get(msg.DeviceID); session != nil {
				session.Screen().FpsCounter.AddRenderedFrame()
			}

		default:
			// everything else is a host input event
			session := c.sm.Get(msg.DeviceID)
			if session == nil {
				continue
			}
			ev := msg.InputEvent
			ev.Type = msg.Type
			if !session.PostEvent(&ev) {
				log.Printf("⚠️ [%s] Input queue full, dropped %s event", msg.DeviceID, msg.Type)
			}
		}
	}
}

// writePump handles outgoing messages plus pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
