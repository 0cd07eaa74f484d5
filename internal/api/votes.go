package api

import (
	"context"  // Context for cache operations
	"errors"   // Sentinel errors
	"net/http" // HTTP status codes
	"time"     // Vote timestamp

	"voting_system/internal/domain" // Importing domain models
	"voting_system/internal/stats"  // Statistics aggregate
	"voting_system/internal/utils"  // Cache helpers

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// Broadcaster pushes an event to every connected dashboard client
type Broadcaster interface {
	Broadcast(event string, data any)
}

// Cast-vote failure signals
var (
	// ErrVoterUnavailable deliberately covers both an unknown voter and a
	// voter who already voted, so callers cannot tell the two apart
	ErrVoterUnavailable = errors.New("Voter not found or has already voted")
	// ErrPartyNotFound signals an unknown party id
	ErrPartyNotFound = errors.New("Party not found")
)

// VoteRequest is the cast-vote payload
type VoteRequest struct {
	VoterID uint `json:"voter_id" binding:"required"` // Voter casting the vote
	PartyID uint `json:"party_id" binding:"required"` // Party voted for
}

// CastVote performs the one-time NOT_VOTED -> VOTED transition as a single
// transaction: a conditional update guarded by the current state plus the
// audit-log insert. The guarded WHERE clause is what makes concurrent casts
// for the same voter succeed at most once, even across multiple service
// instances.
func CastVote(db *gorm.DB, voterID, partyID uint, ip, userAgent string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		// The party must exist before the voter row is touched
		var party domain.Party
		if err := tx.First(&party, "id = ?", partyID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPartyNotFound
			}
			return err // Infrastructure failure, rolls back
		}
		now := time.Now()
		// Compare-and-set: only a voter still in NOT_VOTED is updated
		res := tx.Model(&domain.Voter{}).
			Where("id = ? AND has_voted = ?", voterID, false).
			Updates(map[string]any{
				"has_voted":      true,    // Terminal state
				"voted_at":       now,     // Cast timestamp
				"party_voted_id": partyID, // The choice
			})
		if res.Error != nil {
			return res.Error // Rolls back
		}
		// Zero affected rows means unknown voter or already voted; the two
		// causes are intentionally not distinguished
		if res.RowsAffected == 0 {
			return ErrVoterUnavailable
		}
		// The audit row needs the voter's village
		var voter domain.Voter
		if err := tx.First(&voter, "id = ?", voterID).Error; err != nil {
			return err // Rolls back the state transition too
		}
		entry := domain.VoteLog{
			VoterID:   voterID,         // Who voted
			PartyID:   partyID,         // For whom
			VillageID: voter.VillageID, // From where
			VotedAt:   now,             // When
			IPAddress: ip,              // Source IP
			UserAgent: userAgent,       // Client user agent
		}
		// Append exactly one audit record in the same transaction
		return tx.Create(&entry).Error
	})
}

// CastVoteHandler records a vote and pushes fresh statistics to every
// connected dashboard
func CastVoteHandler(db *gorm.DB, rdb *redis.Client, hub Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VoteRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Voter ID and Party ID are required"})
			return
		}
		ip := c.ClientIP()                          // Source address for the audit log
		userAgent := c.GetHeader("User-Agent")      // Client identification for the audit log
		err := CastVote(db, req.VoterID, req.PartyID, ip, userAgent)
		if err != nil {
			switch {
			case errors.Is(err, ErrVoterUnavailable):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, ErrPartyNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				logrus.WithFields(logrus.Fields{
					"voter_id": req.VoterID, // Attempted voter
					"party_id": req.PartyID, // Attempted party
					"error":    err.Error(), // Error message
				}).Error("Failed to cast vote")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cast vote"})
			}
			return
		}
		logrus.WithFields(logrus.Fields{
			"voter_id": req.VoterID, // Who voted
			"party_id": req.PartyID, // For whom
			"ip":       ip,          // From where
		}).Info("Vote cast")
		c.JSON(http.StatusOK, gin.H{"message": "Vote cast successfully"})

		// Fresh numbers for every connected dashboard. Broadcast failures
		// never affect the already-sent response.
		ctx := context.Background()
		if err := utils.InvalidateStats(ctx, rdb); err != nil {
			logrus.WithField("error", err.Error()).Warn("Failed to invalidate stats cache")
		}
		if hub != nil {
			s, err := stats.Get(ctx, db, rdb)
			if err != nil {
				logrus.WithField("error", err.Error()).Error("Failed to recompute stats after vote")
				return
			}
			hub.Broadcast("voteUpdate", s)
		}
	}
}

// VotingStatsHandler serves the statistics aggregate
func VotingStatsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := stats.Get(c.Request.Context(), db, rdb)
		if err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch statistics"})
			return
		}
		c.JSON(http.StatusOK, s) // Return the aggregate
	}
}
