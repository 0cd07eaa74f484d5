package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// CORS restricts cross-origin access to the dashboard origin and answers
// preflight requests. Credentials are allowed so the dashboard can keep its
// session cookies across the API and the push channel.
func CORS(frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin") // Origin of the request
		if origin == frontendURL {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Vary", "Origin")
		}
		// Answer preflight without touching business logic
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SecurityHeaders sets baseline browser hardening headers on every response
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")  // Block MIME sniffing
		c.Header("X-Frame-Options", "DENY")            // Block framing
		c.Header("X-XSS-Protection", "1; mode=block")  // Legacy XSS filter
		c.Header("Referrer-Policy", "no-referrer")     // Keep referrers private
		c.Next()
	}
}
