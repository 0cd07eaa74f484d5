package api

import (
	"voting_system/internal/config"     // Application configuration
	"voting_system/internal/middleware" // Rate limiting and security
	"voting_system/internal/upload"     // Logo file storage
	"voting_system/internal/ws"         // Push channel

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter builds the full route table. Kept out of main so tests can run
// requests against the exact production routing.
func NewRouter(db *gorm.DB, rdb *redis.Client, hub *ws.Hub, store *upload.Store, cfg *config.Config) *gin.Engine {
	r := gin.New()          // Gin router instance
	r.Use(gin.Logger())     // Request logging
	r.Use(gin.Recovery())   // Panic recovery
	r.Use(middleware.CORS(cfg.FrontendURL))    // Dashboard origin only
	r.Use(middleware.SecurityHeaders())        // Headers on every response

	// Uploaded party logos are served statically
	r.Static("/uploads", cfg.UploadDir)

	// Liveness endpoints outside the rate-limited surface
	r.GET("/", RootHandler())

	// Everything under /api shares the general limiter
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.GeneralLimiter(rdb))
	apiGroup.GET("/health", HealthHandler(db))
	apiGroup.GET("/info", InfoHandler())

	// Village routes
	villages := apiGroup.Group("/villages")
	villages.GET("", ListVillagesHandler(db))          // List with aggregates
	villages.POST("", CreateVillageHandler(db))        // Create
	villages.GET("/:id", GetVillageHandler(db))        // Detail with voters
	villages.PUT("/:id", UpdateVillageHandler(db))     // Update
	villages.DELETE("/:id", DeleteVillageHandler(db))  // Delete when empty

	// Party routes
	parties := apiGroup.Group("/parties")
	parties.GET("", ListPartiesHandler(db))                       // List with vote counts
	parties.POST("", CreatePartyHandler(db, store))               // Create, multipart with optional logo
	parties.GET("/colors", PartyColorsHandler(db))                // Chart color map
	parties.GET("/:id", GetPartyHandler(db))                      // Detail with vote breakdown
	parties.PUT("/:id", UpdatePartyHandler(db, store))            // Update, multipart
	parties.POST("/:id/upload-logo", UploadLogoHandler(db, store)) // Replace logo
	parties.DELETE("/:id", DeletePartyHandler(db))                // Delete when vote-free

	// Voter routes
	voters := apiGroup.Group("/voters")
	voters.GET("", ListVotersHandler(db))                                       // Paginated list
	voters.POST("", middleware.RegistrationLimiter(rdb), CreateVoterHandler(db)) // Registration, throttled
	voters.POST("/vote", middleware.VoteLimiter(rdb), CastVoteHandler(db, rdb, hub)) // Cast vote, throttled
	voters.GET("/stats", VotingStatsHandler(db, rdb))                           // Statistics aggregate
	voters.GET("/:id", GetVoterHandler(db))                                     // Detail
	voters.PUT("/:id", UpdateVoterHandler(db))                                  // Update, pre-vote only
	voters.DELETE("/:id", DeleteVoterHandler(db))                               // Delete, pre-vote only

	// Push channel for live dashboards
	r.GET("/ws", ws.Handler(hub, db, rdb, cfg.FrontendURL))

	// Unmatched routes get the JSON surface listing
	r.NoRoute(NotFoundHandler())

	return r
}
