package api

import (
	"net/http" // HTTP status codes
	"time"     // Voted-at timestamps

	"voting_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// VillageRequest is the create/update payload for a village
type VillageRequest struct {
	Name        string `json:"name" binding:"required"` // Village name must be provided
	Description string `json:"description"`             // Optional description
}

// villageRow is one village with its voter aggregates
type villageRow struct {
	ID          uint   `json:"id"`          // Village ID
	Name        string `json:"name"`        // Village name
	Description string `json:"description"` // Description
	VoterCount  int64  `json:"voter_count"` // Registered voters
	VotesCast   int64  `json:"votes_cast"`  // Votes cast
}

// villageVoterRow is one voter inside the village detail response
type villageVoterRow struct {
	ID         uint       `json:"id"`          // Voter ID
	Name       string     `json:"name"`        // Voter name
	ICNumber   string     `gorm:"column:ic_number" json:"ic_number"` // Identity number
	HasVoted   bool       `json:"has_voted"`   // Voted flag
	VotedAt    *time.Time `json:"voted_at"`    // Cast timestamp
	PartyName  *string    `json:"party_name"`  // Party voted for, nil until voted
	PartyColor *string    `json:"party_color"` // Party color, nil until voted
}

// ListVillagesHandler returns all villages with voter and vote counts
func ListVillagesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		villages := []villageRow{}
		// Aggregate voters and cast votes per village
		if err := db.Raw(`
			SELECT v.id, v.name, v.description,
				COUNT(vot.id) AS voter_count,
				COUNT(CASE WHEN vot.has_voted = ? THEN 1 END) AS votes_cast
			FROM villages v
			LEFT JOIN voters vot ON v.id = vot.village_id
			GROUP BY v.id, v.name, v.description
			ORDER BY v.name`, true).Scan(&villages).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch villages")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch villages"})
			return
		}
		c.JSON(http.StatusOK, villages) // Return the village list
	}
}

// CreateVillageHandler adds a new village
func CreateVillageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VillageRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Village name is required"})
			return
		}
		// Check name uniqueness before inserting
		var existing domain.Village
		if err := db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Village name already exists"})
			return
		}
		village := domain.Village{Name: req.Name, Description: req.Description}
		// Attempt to create the village in the database
		if err := db.Create(&village).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"name":  req.Name,    // Village name
				"error": err.Error(), // Error message
			}).Error("Failed to create village")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add village"})
			return
		}
		// Return success response with the created record
		c.JSON(http.StatusCreated, gin.H{
			"message": "Village added successfully",
			"village": village,
		})
	}
}

// GetVillageHandler returns one village with its voters
func GetVillageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var village domain.Village // Fetch the village
		if err := db.First(&village, "id = ?", c.Param("id")).Error; err != nil {
			// If not found, return 404
			c.JSON(http.StatusNotFound, gin.H{"error": "Village not found"})
			return
		}
		voters := []villageVoterRow{}
		// Voters of this village, joined with the party they voted for
		if err := db.Raw(`
			SELECT v.id, v.name, v.ic_number, v.has_voted, v.voted_at,
				p.name AS party_name, p.color AS party_color
			FROM voters v
			LEFT JOIN parties p ON v.party_voted_id = p.id
			WHERE v.village_id = ?
			ORDER BY v.name`, village.ID).Scan(&voters).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch village voters")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch village"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"village": village, // The village record
			"voters":  voters,  // Its voters
		})
	}
}

// UpdateVillageHandler updates name and description of a village
func UpdateVillageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VillageRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Village name is required"})
			return
		}
		var village domain.Village // Fetch the village
		if err := db.First(&village, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Village not found"})
			return
		}
		// Check name uniqueness excluding this village
		var other domain.Village
		if err := db.Where("name = ? AND id != ?", req.Name, village.ID).First(&other).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Village name already exists"})
			return
		}
		// Update both fields
		if err := db.Model(&village).Updates(map[string]any{
			"name":        req.Name,        // New name
			"description": req.Description, // New description
		}).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"village_id": village.ID,  // Village being updated
				"error":      err.Error(), // Error message
			}).Error("Failed to update village")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update village"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Village updated successfully",
			"village": village,
		})
	}
}

// DeleteVillageHandler removes a village, blocked while voters reference it
func DeleteVillageHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var village domain.Village // Fetch the village
		if err := db.First(&village, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Village not found"})
			return
		}
		var voterCount int64 // Count referencing voters
		if err := db.Model(&domain.Voter{}).Where("village_id = ?", village.ID).Count(&voterCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete village"})
			return
		}
		// A village with registered voters cannot be deleted
		if voterCount > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete village with registered voters"})
			return
		}
		if err := db.Delete(&village).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"village_id": village.ID,  // Village being deleted
				"error":      err.Error(), // Error message
			}).Error("Failed to delete village")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete village"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Village deleted successfully"})
	}
}
