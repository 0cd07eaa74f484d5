package domain

import "time"

// Party Model
type Party struct {
	ID           uint      `gorm:"primaryKey" json:"id"`                      // Primary key
	Name         string    `gorm:"size:255;uniqueIndex;not null" json:"name"` // Unique party name
	Abbreviation string    `gorm:"size:50" json:"abbreviation"`               // Short party code
	Color        string    `gorm:"size:7;not null" json:"color"`              // Hex color #RRGGBB
	LogoPath     *string   `gorm:"size:255" json:"logo_path"`                 // Relative path to the uploaded logo, nil when none
	Description  string    `gorm:"type:text" json:"description"`              // Free-text description
	CreatedAt    time.Time `json:"created_at"`                                // Timestamp of creation
}

// DefaultPartyColor is used when a party is created without a color
const DefaultPartyColor = "#3B82F6"
