package ws

import (
	"context"       // Context for stats lookups
	"encoding/json" // Client event parsing
	"net/http"      // Origin checking
	"time"          // Welcome timestamp

	"voting_system/internal/stats" // Statistics aggregate

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/gorilla/websocket" // WebSocket transport
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// clientEvent is the frame a dashboard sends over the channel
type clientEvent struct {
	Event string `json:"event"` // joinVotingRoom or requestStats
}

// Handler upgrades a request to a websocket connection, registers the client
// with the hub and serves its events until it disconnects
func Handler(hub *Hub, db *gorm.DB, rdb *redis.Client, frontendURL string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Browsers send the dashboard origin; non-browser clients send none
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == frontendURL
		},
	}
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logrus.WithField("error", err.Error()).Warn("WebSocket upgrade failed")
			return
		}
		client := &Client{hub: hub, conn: conn, send: make(chan []byte, 16)}
		hub.register <- client
		go client.writePump()

		// New connections get a greeting, never history
		client.push("welcome", gin.H{
			"message":   "Connected to the live voting service",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		logrus.WithField("remote", conn.RemoteAddr().String()).Info("Dashboard connected")

		go client.readPump(db, rdb)
	}
}

// readPump serves client events until the connection drops
func (c *Client) readPump(db *gorm.DB, rdb *redis.Client) {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		logrus.WithFields(logrus.Fields{
			"remote": c.conn.RemoteAddr().String(), // Departing client
			"joined": c.joined,                     // Whether it joined the voting room
		}).Info("Dashboard disconnected")
	}()
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithField("error", err.Error()).Debug("Read from client failed")
			}
			return
		}
		var ev clientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.push("error", gin.H{"message": "Invalid message"})
			continue
		}
		switch ev.Event {
		case "joinVotingRoom":
			// Broadcasts go to every connected client anyway; the join is
			// only recorded on the connection
			c.joined = true

		case "requestStats":
			// On-demand recomputation, replied privately to this client
			s, err := stats.Get(context.Background(), db, rdb)
			if err != nil {
				logrus.WithField("error", err.Error()).Error("Failed to fetch stats for client")
				c.push("error", gin.H{"message": "Failed to fetch statistics"})
				continue
			}
			c.push("statsUpdate", s)

		default:
			c.push("error", gin.H{"message": "Unknown event: " + ev.Event})
		}
	}
}
