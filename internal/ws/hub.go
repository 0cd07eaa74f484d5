package ws

import (
	"encoding/json" // Event framing
	"sync"          // Client send/close serialization

	"github.com/gorilla/websocket" // WebSocket transport
	"github.com/sirupsen/logrus"   // Logging library
)

// Event is the wire frame for every push-channel message
type Event struct {
	Event string `json:"event"` // Event name: welcome, voteUpdate, statsUpdate, error
	Data  any    `json:"data"`  // Event payload
}

// Client is one connected dashboard
type Client struct {
	hub    *Hub            // Owning hub
	conn   *websocket.Conn // Underlying connection
	mu     sync.Mutex      // Guards send against closeSend; the hub drops
	closed bool            // slow clients while readPump may still push
	send   chan []byte     // Buffered outbound queue
	joined bool            // Set when the client joined the voting room
}

// enqueue queues one marshaled frame, dropping it when the client is closed
// or its buffer is full
func (c *Client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound queue exactly once. The only place send is
// ever closed, so a concurrent enqueue can never hit a closed channel.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub is the registry of connected clients. All registry access happens in
// Run's loop, no locks needed.
type Hub struct {
	clients    map[*Client]bool // Connected clients
	broadcast  chan []byte      // Messages fanned out to every client
	register   chan *Client     // New connections
	unregister chan *Client     // Departing connections
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client registry until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true // Add the new connection

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				if !c.enqueue(message) {
					// Slow client, drop it rather than block the fan-out
					c.closeSend()
					delete(h.clients, c)
				}
			}
		}
	}
}

// Broadcast pushes one event to every connected client, best-effort
func (h *Hub) Broadcast(event string, data any) {
	msg, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Failed to encode broadcast event")
		return
	}
	h.broadcast <- msg
}

// push queues one event on a single client, dropping it when the client has
// been dropped or its buffer is full
func (c *Client) push(event string, data any) {
	msg, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		logrus.WithField("error", err.Error()).Error("Failed to encode client event")
		return
	}
	c.enqueue(msg)
}

// writePump sends queued messages to the connection until the hub closes the
// send channel
func (c *Client) writePump() {
	defer c.conn.Close()
	for m := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, m); err != nil {
			logrus.WithField("error", err.Error()).Debug("Write to client failed")
			break
		}
	}
}
