package api

import (
	"math"     // Percentage rounding
	"net/http" // HTTP status codes
	"regexp"   // Color validation
	"time"     // Voted-at timestamps

	"voting_system/internal/domain" // Importing domain models
	"voting_system/internal/upload" // Logo file storage

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// colorPattern validates #RRGGBB hex colors, case-insensitive
var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// partyRow is one party with its vote count
type partyRow struct {
	ID           uint    `json:"id"`           // Party ID
	Name         string  `json:"name"`         // Party name
	Abbreviation string  `json:"abbreviation"` // Party abbreviation
	Color        string  `json:"color"`        // Party color
	LogoPath     *string `json:"logo_path"`    // Logo path, nil when none
	Description  string  `json:"description"`  // Description
	VoteCount    int64   `json:"vote_count"`   // Votes received
}

// partyVoterRow is one voter inside the party detail response
type partyVoterRow struct {
	ID          uint       `json:"id"`           // Voter ID
	Name        string     `json:"name"`         // Voter name
	ICNumber    string     `gorm:"column:ic_number" json:"ic_number"` // Identity number
	VotedAt     *time.Time `json:"voted_at"`     // Cast timestamp
	VillageName string     `json:"village_name"` // Voter's village
}

// villageDistributionRow is the per-village vote spread of one party
type villageDistributionRow struct {
	VillageName string `json:"village_name"` // Village name
	VoteCount   int64  `json:"vote_count"`   // Votes from that village
}

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ListPartiesHandler returns all parties with their vote counts
func ListPartiesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		parties := []partyRow{}
		// Count received votes per party
		if err := db.Raw(`
			SELECT p.id, p.name, p.abbreviation, p.color, p.logo_path, p.description,
				COUNT(v.id) AS vote_count
			FROM parties p
			LEFT JOIN voters v ON p.id = v.party_voted_id AND v.has_voted = ?
			GROUP BY p.id, p.name, p.abbreviation, p.color, p.logo_path, p.description
			ORDER BY p.name`, true).Scan(&parties).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch parties")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch parties"})
			return
		}
		c.JSON(http.StatusOK, parties) // Return the party list
	}
}

// CreatePartyHandler adds a new party from a multipart form with an optional
// logo file
func CreatePartyHandler(db *gorm.DB, store *upload.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("name")                 // Party name
		abbreviation := c.PostForm("abbreviation") // Optional abbreviation
		description := c.PostForm("description")   // Optional description
		color := c.PostForm("color")               // Optional color
		if color == "" {
			color = domain.DefaultPartyColor // Default chart color
		}
		// Validate required fields before touching the filesystem
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Party name is required"})
			return
		}
		if !colorPattern.MatchString(color) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Color must be a valid hex color code"})
			return
		}
		// Check name uniqueness before inserting
		var existing domain.Party
		if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Party name already exists"})
			return
		}
		// Store the logo only after validation passed
		var logoPath *string
		if fh, err := c.FormFile("logo"); err == nil {
			path, err := store.SaveLogo(c, fh)
			if err != nil {
				if upload.IsValidationErr(err) {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				logrus.WithField("error", err.Error()).Error("Failed to store logo")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add party"})
				return
			}
			logoPath = &path
		}
		party := domain.Party{
			Name:         name,         // Party name
			Abbreviation: abbreviation, // Abbreviation
			Color:        color,        // Validated color
			LogoPath:     logoPath,     // Stored logo path or nil
			Description:  description,  // Description
		}
		if err := db.Create(&party).Error; err != nil {
			// The just-uploaded file must not be orphaned by the failure
			if logoPath != nil {
				store.Remove(*logoPath)
			}
			logrus.WithFields(logrus.Fields{
				"name":  name,        // Party name
				"error": err.Error(), // Error message
			}).Error("Failed to create party")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add party"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Party added successfully",
			"party":   party,
		})
	}
}

// GetPartyHandler returns one party with vote details
func GetPartyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var party domain.Party // Fetch the party
		if err := db.First(&party, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
			return
		}
		var voteCount int64 // Votes received by this party
		if err := db.Model(&domain.Voter{}).
			Where("party_voted_id = ? AND has_voted = ?", party.ID, true).
			Count(&voteCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch party"})
			return
		}
		var totalCast int64 // All cast votes, for the percentage
		if err := db.Model(&domain.Voter{}).Where("has_voted = ?", true).Count(&totalCast).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch party"})
			return
		}
		percentage := 0.0
		if totalCast > 0 {
			percentage = round2(float64(voteCount) * 100 / float64(totalCast))
		}
		// Voters who voted for this party, newest first
		voters := []partyVoterRow{}
		if err := db.Raw(`
			SELECT v.id, v.name, v.ic_number, v.voted_at, vil.name AS village_name
			FROM voters v
			JOIN villages vil ON v.village_id = vil.id
			WHERE v.party_voted_id = ? AND v.has_voted = ?
			ORDER BY v.voted_at DESC`, party.ID, true).Scan(&voters).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch party"})
			return
		}
		// Vote spread across villages
		distribution := []villageDistributionRow{}
		if err := db.Raw(`
			SELECT vil.name AS village_name, COUNT(v.id) AS vote_count
			FROM voters v
			JOIN villages vil ON v.village_id = vil.id
			WHERE v.party_voted_id = ? AND v.has_voted = ?
			GROUP BY vil.id, vil.name
			ORDER BY vote_count DESC`, party.ID, true).Scan(&distribution).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch party"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"party": gin.H{
				"id":           party.ID,           // Party ID
				"name":         party.Name,         // Party name
				"abbreviation": party.Abbreviation, // Abbreviation
				"color":        party.Color,        // Color
				"logo_path":    party.LogoPath,     // Logo path
				"description":  party.Description,  // Description
				"vote_count":   voteCount,          // Votes received
				"percentage":   percentage,         // Share of cast votes
			},
			"voters":               voters,       // Who voted for it
			"village_distribution": distribution, // Where the votes came from
		})
	}
}

// UpdatePartyHandler updates a party from a multipart form, optionally
// replacing the logo
func UpdatePartyHandler(db *gorm.DB, store *upload.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var party domain.Party // Fetch the party
		if err := db.First(&party, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
			return
		}
		name := c.PostForm("name")                 // Party name
		abbreviation := c.PostForm("abbreviation") // Abbreviation
		description := c.PostForm("description")   // Description
		color := c.PostForm("color")               // Color
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Party name is required"})
			return
		}
		if color != "" && !colorPattern.MatchString(color) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Color must be a valid hex color code"})
			return
		}
		if color == "" {
			color = party.Color // Keep the current color when omitted
		}
		// Check name uniqueness excluding this party
		var other domain.Party
		if err := db.Where("name = ? AND id != ?", name, party.ID).First(&other).Error; err == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Party name already exists"})
			return
		}
		// Optional replacement logo
		oldLogo := party.LogoPath
		var newLogo *string
		if fh, err := c.FormFile("logo"); err == nil {
			path, err := store.SaveLogo(c, fh)
			if err != nil {
				if upload.IsValidationErr(err) {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				logrus.WithField("error", err.Error()).Error("Failed to store logo")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update party"})
				return
			}
			newLogo = &path
		}
		updates := map[string]any{
			"name":         name,         // New name
			"abbreviation": abbreviation, // New abbreviation
			"color":        color,        // New color
			"description":  description,  // New description
		}
		if newLogo != nil {
			updates["logo_path"] = *newLogo
		}
		if err := db.Model(&party).Updates(updates).Error; err != nil {
			// Clean up the freshly stored file on failure
			if newLogo != nil {
				store.Remove(*newLogo)
			}
			logrus.WithFields(logrus.Fields{
				"party_id": party.ID,    // Party being updated
				"error":    err.Error(), // Error message
			}).Error("Failed to update party")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update party"})
			return
		}
		// The old logo is only removed once the new one is committed
		if newLogo != nil && oldLogo != nil {
			store.Remove(*oldLogo)
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Party updated successfully",
			"party":   party,
		})
	}
}

// UploadLogoHandler replaces the logo of an existing party
func UploadLogoHandler(db *gorm.DB, store *upload.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("logo") // The logo file is mandatory here
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
			return
		}
		var party domain.Party // Fetch the party before writing anything
		if err := db.First(&party, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
			return
		}
		path, err := store.SaveLogo(c, fh)
		if err != nil {
			if upload.IsValidationErr(err) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			logrus.WithField("error", err.Error()).Error("Failed to store logo")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload logo"})
			return
		}
		oldLogo := party.LogoPath
		if err := db.Model(&party).Update("logo_path", path).Error; err != nil {
			store.Remove(path) // Do not orphan the new file
			logrus.WithFields(logrus.Fields{
				"party_id": party.ID,    // Party being updated
				"error":    err.Error(), // Error message
			}).Error("Failed to upload logo")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload logo"})
			return
		}
		// Best-effort removal of the replaced file
		if oldLogo != nil {
			store.Remove(*oldLogo)
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Logo uploaded successfully",
			"party":   party,
		})
	}
}

// DeletePartyHandler removes a party, blocked while it has received votes
func DeletePartyHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var party domain.Party // Fetch the party
		if err := db.First(&party, "id = ?", c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Party not found"})
			return
		}
		var voteCount int64 // Count received votes
		if err := db.Model(&domain.Voter{}).
			Where("party_voted_id = ? AND has_voted = ?", party.ID, true).
			Count(&voteCount).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete party"})
			return
		}
		// A party with votes is part of the audit trail and cannot go away
		if voteCount > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete party that has received votes"})
			return
		}
		if err := db.Delete(&party).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"party_id": party.ID,    // Party being deleted
				"error":    err.Error(), // Error message
			}).Error("Failed to delete party")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete party"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Party deleted successfully"})
	}
}

// PartyColorsHandler returns the id-keyed color map the dashboard charts use
func PartyColorsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var parties []domain.Party // All parties ordered by name
		if err := db.Order("name").Find(&parties).Error; err != nil {
			logrus.WithField("error", err.Error()).Error("Failed to fetch party colors")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch party colors"})
			return
		}
		colorMap := make(map[uint]gin.H, len(parties)) // Keyed by party ID
		for _, p := range parties {
			colorMap[p.ID] = gin.H{
				"name":         p.Name,         // Party name
				"abbreviation": p.Abbreviation, // Abbreviation
				"color":        p.Color,        // Chart color
				"logo_path":    p.LogoPath,     // Logo path
			}
		}
		c.JSON(http.StatusOK, colorMap)
	}
}
