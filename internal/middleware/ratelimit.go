package middleware

import (
	"net/http" // HTTP status codes
	"time"     // Window durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// RateLimit returns a fixed-window per-IP limiter. Counters live in Redis
// (INCR + EXPIRE on the first hit of a window) so every stateless instance
// behind the load balancer shares the same window. The window is approximate
// and resets by wall clock, which is all the gateway needs.
func RateLimit(rdb *redis.Client, name string, max int64, window time.Duration, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + name + ":" + c.ClientIP() // One counter per limiter per client address
		count, err := rdb.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Fail open: a Redis outage must not take the API down
			logrus.WithFields(logrus.Fields{
				"limiter": name,        // Limiter name
				"error":   err.Error(), // Redis error
			}).Warn("Rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		// First hit of a fresh window starts the expiry clock
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}
		// Over the limit, reject before any business logic runs
		if count > max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": message})
			return
		}
		c.Next() // Proceed to the next handler
	}
}

// GeneralLimiter covers the whole API surface
func GeneralLimiter(rdb *redis.Client) gin.HandlerFunc {
	return RateLimit(rdb, "general", 100, 15*time.Minute,
		"Too many requests from this IP, please try again later.")
}

// VoteLimiter is the tighter window on the vote endpoint
func VoteLimiter(rdb *redis.Client) gin.HandlerFunc {
	return RateLimit(rdb, "vote", 10, 5*time.Minute,
		"Too many vote attempts from this IP, please try again later.")
}

// RegistrationLimiter throttles voter registration
func RegistrationLimiter(rdb *redis.Client) gin.HandlerFunc {
	return RateLimit(rdb, "registration", 20, 10*time.Minute,
		"Too many registration attempts from this IP, please try again later.")
}
