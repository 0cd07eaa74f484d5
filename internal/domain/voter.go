package domain

import "time"

// Voter Model
type Voter struct {
	ID           uint       `gorm:"primaryKey" json:"id"`                                // Primary key
	Name         string     `gorm:"size:255;not null" json:"name"`                       // Voter name
	ICNumber     string     `gorm:"column:ic_number;size:12;uniqueIndex;not null" json:"ic_number"` // National identity number, exactly 12 digits
	VillageID    uint       `gorm:"not null;index" json:"village_id"`                    // Foreign key to Village
	HasVoted     bool       `gorm:"not null;default:false" json:"has_voted"`             // One-way voted flag
	VotedAt      *time.Time `json:"voted_at"`                                            // Timestamp of the cast, nil until voted
	PartyVotedID *uint      `json:"party_voted_id"`                                      // Foreign key to the Party voted for, nil until voted
	CreatedAt    time.Time  `json:"created_at"`                                          // Timestamp of registration
}
