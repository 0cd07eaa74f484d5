package api

import (
	"net/http" // HTTP status codes
	"regexp"   // IC number validation
	"strconv"  // Query parameter parsing
	"time"     // Voted-at timestamps

	"voting_system/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// icPattern validates Malaysian IC numbers, exactly 12 digits
var icPattern = regexp.MustCompile(`^\d{12}$`)

// VoterRequest is the create/update payload for a voter
type VoterRequest struct {
	Name      string `json:"name" binding:"required"`       // Voter name must be provided
	ICNumber  string `json:"ic_number" binding:"required"`  // Identity number must be provided
	VillageID uint   `json:"village_id" binding:"required"` // Village must be provided
}

// voterRow is one voter joined with display names for the dashboard
type voterRow struct {
	ID           uint       `json:"id"`             // Voter ID
	Name         string     `json:"name"`           // Voter name
	ICNumber     string     `gorm:"column:ic_number" json:"ic_number"` // Identity number
	VillageID    uint       `json:"village_id"`     // Village ID
	HasVoted     bool       `json:"has_voted"`      // Voted flag
	VotedAt      *time.Time `json:"voted_at"`       // Cast timestamp
	PartyVotedID *uint      `json:"party_voted_id"` // Party voted for
	VillageName  *string    `json:"village_name"`   // Village display name
	PartyName    *string    `json:"party_name"`     // Party display name, nil until voted
	PartyColor   *string    `json:"party_color"`    // Party color, nil until voted
}

// ListVotersHandler returns a page of voters with search and village filters.
// The village filter is the explicit pair village_id / village_name.
func ListVotersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1   // Default page
		limit := 50 // Default page size
		// If page exists in query
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If limit exists in query
		if l := c.Query("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 100 {
				limit = v // Set limit if valid
			}
		}
		offset := (page - 1) * limit // Calculate offset

		search := c.Query("search")           // Substring over name or IC number
		villageID := c.Query("village_id")    // Numeric village filter
		villageName := c.Query("village_name") // Name village filter

		// filtered applies search and village filters to a joined voter query
		filtered := func() *gorm.DB {
			q := db.Table("voters v").
				Joins("LEFT JOIN villages vil ON v.village_id = vil.id").
				Joins("LEFT JOIN parties p ON v.party_voted_id = p.id")
			if search != "" {
				q = q.Where("v.name LIKE ? OR v.ic_number LIKE ?", "%"+search+"%", "%"+search+"%")
			}
			if villageID != "" {
				q = q.Where("v.village_id = ?", villageID)
			}
			if villageName != "" {
				q = q.Where("vil.name = ?", villageName)
			}
			return q
		}

		var total int64 // Total matching voters, for pagination
		if err := filtered().Count(&total).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to count voters")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch voters"})
			return
		}
		voters := []voterRow{}
		// Fetch the page, ordered by name
		if err := filtered().
			Select(`v.id, v.name, v.ic_number, v.village_id, v.has_voted, v.voted_at, v.party_voted_id,
				vil.name AS village_name, p.name AS party_name, p.color AS party_color`).
			Order("v.name").
			Limit(limit).
			Offset(offset).
			Scan(&voters).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch voters")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch voters"})
			return
		}
		pages := (int(total) + limit - 1) / limit // Calculate total pages
		c.JSON(http.StatusOK, gin.H{
			"voters": voters, // The page of voters
			"pagination": gin.H{
				"page":  page,  // Current page
				"limit": limit, // Page size
				"total": total, // Total matching voters
				"pages": pages, // Total pages
			},
		})
	}
}

// CreateVoterHandler registers a new voter
func CreateVoterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VoterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, IC number, and village are required"})
			return
		}
		// Validate IC number format (Malaysian IC: 12 digits)
		if !icPattern.MatchString(req.ICNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "IC number must be 12 digits"})
			return
		}
		// The referenced village must exist
		var village domain.Village
		if err := db.First(&village, "id = ?", req.VillageID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Village not found"})
			return
		}
		// Check IC number uniqueness
		var existing domain.Voter
		if err := db.Where("ic_number = ?", req.ICNumber).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "IC number already exists"})
			return
		}
		voter := domain.Voter{
			Name:      req.Name,      // Voter name
			ICNumber:  req.ICNumber,  // Identity number
			VillageID: req.VillageID, // Village reference
		}
		if err := db.Create(&voter).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"ic_number": req.ICNumber, // Attempted identity number
				"error":     err.Error(),  // Error message
			}).Error("Failed to create voter")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add voter"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"voter_id":   voter.ID,     // New voter
			"village_id": voter.VillageID, // Their village
		}).Info("Voter registered")
		c.JSON(http.StatusCreated, gin.H{
			"message": "Voter added successfully",
			"voter": gin.H{
				"id":           voter.ID,       // Voter ID
				"name":         voter.Name,     // Voter name
				"ic_number":    voter.ICNumber, // Identity number
				"has_voted":    voter.HasVoted, // Always false at creation
				"village_id":   voter.VillageID,
				"village_name": village.Name, // Joined display name
			},
		})
	}
}

// GetVoterHandler returns one voter joined with village and party names
func GetVoterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var voter voterRow // Joined voter record
		result := db.Table("voters v").
			Select(`v.id, v.name, v.ic_number, v.village_id, v.has_voted, v.voted_at, v.party_voted_id,
				vil.name AS village_name, p.name AS party_name, p.color AS party_color`).
			Joins("LEFT JOIN villages vil ON v.village_id = vil.id").
			Joins("LEFT JOIN parties p ON v.party_voted_id = p.id").
			Where("v.id = ?", c.Param("id")).
			Scan(&voter)
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch voter"})
			return
		}
		// Scan does not error on empty results
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voter not found"})
			return
		}
		c.JSON(http.StatusOK, voter) // Return the joined record
	}
}

// UpdateVoterHandler edits a voter, blocked once they have voted
func UpdateVoterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VoterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, IC number, and village ID are required"})
			return
		}
		// Validate IC number format (Malaysian IC: 12 digits)
		if !icPattern.MatchString(req.ICNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "IC number must be 12 digits"})
			return
		}
		var voter domain.Voter // Fetch the voter
		if err := db.First(&voter, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voter not found"})
			return
		}
		// A voter who has voted is immutable
		if voter.HasVoted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot edit voter who has already voted"})
			return
		}
		// Check IC number uniqueness excluding this voter
		var other domain.Voter
		if err := db.Where("ic_number = ? AND id != ?", req.ICNumber, voter.ID).First(&other).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "IC number already exists"})
			return
		}
		// Update all three fields
		if err := db.Model(&voter).Updates(map[string]any{
			"name":       req.Name,      // New name
			"ic_number":  req.ICNumber,  // New identity number
			"village_id": req.VillageID, // New village
		}).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"voter_id": voter.ID,    // Voter being updated
				"error":    err.Error(), // Error message
			}).Error("Failed to update voter")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update voter"})
			return
		}
		// Return the updated record joined with the village name
		var updated voterRow
		db.Table("voters v").
			Select("v.id, v.name, v.ic_number, v.village_id, v.has_voted, v.voted_at, v.party_voted_id, vil.name AS village_name").
			Joins("LEFT JOIN villages vil ON v.village_id = vil.id").
			Where("v.id = ?", voter.ID).
			Scan(&updated)
		c.JSON(http.StatusOK, updated)
	}
}

// DeleteVoterHandler removes a voter, blocked once they have voted
func DeleteVoterHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var voter domain.Voter // Fetch the voter
		if err := db.First(&voter, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Voter not found"})
			return
		}
		// The audit trail keeps voted voters around forever
		if voter.HasVoted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete voter who has already voted"})
			return
		}
		if err := db.Delete(&voter).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"voter_id": voter.ID,    // Voter being deleted
				"error":    err.Error(), // Error message
			}).Error("Failed to delete voter")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete voter"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Voter deleted successfully"})
	}
}
