package api

import (
	"net/http" // HTTP status codes
	"time"     // Health timestamps

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Version of the service, reported by the info endpoints
const Version = "1.0.0"

// HealthHandler reports service and database health
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB() // Underlying connection pool
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context()) // Probe the database
		}
		if err != nil {
			// Database is down; the server itself is still running
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":    "Error",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
				"database":  "Disconnected",
				"server":    "Running",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"database":  "Connected",
			"server":    "Running",
		})
	}
}

// InfoHandler returns static service metadata
func InfoHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Live Voting System API",
			"version":     Version,
			"description": "Live voting statistics service for election monitoring",
			"endpoints": gin.H{
				"voters":   "/api/voters",
				"villages": "/api/villages",
				"parties":  "/api/parties",
				"health":   "/api/health",
			},
			"features": []string{
				"Real-time voting updates",
				"Village management",
				"Political party management",
				"Live statistics",
				"Audit trail",
				"IC number validation",
			},
		})
	}
}

// RootHandler is the liveness greeting at /
func RootHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "Live Voting System API is running!",
			"version":   Version,
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// NotFoundHandler answers unmatched routes with the available surface
func NotFoundHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Route " + c.Request.URL.Path + " not found",
			"availableRoutes": []string{
				"/api/health",
				"/api/info",
				"/api/voters",
				"/api/villages",
				"/api/parties",
			},
		})
	}
}
