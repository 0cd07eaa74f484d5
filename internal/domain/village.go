package domain

import "time"

// Village Model
type Village struct {
	ID          uint      `gorm:"primaryKey" json:"id"`                       // Primary key
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`  // Unique village name
	Description string    `gorm:"type:text" json:"description"`               // Free-text description
	CreatedAt   time.Time `json:"created_at"`                                 // Timestamp of creation
	Voters      []Voter   `gorm:"foreignKey:VillageID" json:"voters,omitempty"` // Voters registered in this village
}
